package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"clipgen/internal/logging"
)

const (
	defaultStallThreshold = 15 * time.Second
	defaultCheckInterval  = 5 * time.Second
	defaultTailBytes      = 500
	// waitDelay bounds how long Wait lingers on inherited pipes after the child exits.
	waitDelay = 2 * time.Second
)

// ErrTimeout marks an outcome whose process was killed by the hard timeout.
var ErrTimeout = errors.New("encoder timed out")

// Job describes one encoder invocation.
type Job struct {
	// Name labels the job in logs, e.g. "thumbnail" or "clip".
	Name   string
	Binary string
	Args   []string
	// ExpectedDuration is the denominator for progress reporting; zero disables it.
	ExpectedDuration time.Duration
	// Timeout is the hard limit after which the process group is killed; zero disables it.
	Timeout time.Duration
	// Stdout receives the child's standard output; nil discards it.
	Stdout io.Writer
}

// Outcome is the normalized result of Run. Success is true iff the process
// exited with status 0; everything else is diagnostic.
type Outcome struct {
	Success    bool
	ExitCode   int
	TimedOut   bool
	Stalled    bool
	Err        error
	StderrTail string
	Progress   int
	Elapsed    time.Duration
}

// Options configures a Supervisor.
type Options struct {
	Logger         *slog.Logger
	StallThreshold time.Duration
	CheckInterval  time.Duration
	TailBytes      int
}

// Supervisor spawns and watches encoder processes. It is safe for concurrent use.
type Supervisor struct {
	logger         *slog.Logger
	stallThreshold time.Duration
	checkInterval  time.Duration
	tailBytes      int
	now            func() time.Time
}

// New constructs a Supervisor, filling unset options with defaults.
func New(opts Options) *Supervisor {
	s := &Supervisor{
		logger:         logging.NewComponentLogger(opts.Logger, "supervisor"),
		stallThreshold: opts.StallThreshold,
		checkInterval:  opts.CheckInterval,
		tailBytes:      opts.TailBytes,
		now:            time.Now,
	}
	if s.stallThreshold <= 0 {
		s.stallThreshold = defaultStallThreshold
	}
	if s.checkInterval <= 0 {
		s.checkInterval = defaultCheckInterval
	}
	if s.tailBytes <= 0 {
		s.tailBytes = defaultTailBytes
	}
	return s
}

// Run executes job and blocks until the process exits, the hard timeout
// fires, or ctx is cancelled. Timeouts and cancellation kill the process
// group. Run never returns an error; inspect Outcome instead.
func (s *Supervisor) Run(ctx context.Context, job Job) Outcome {
	logger := logging.WithContext(ctx, s.logger).With(logging.String("job", job.Name))
	sampler := logging.NewProgressSampler(25)
	state := newProcessState(s.now, job.ExpectedDuration, s.tailBytes, func(pct int) {
		if pct >= 0 && sampler.ShouldLog(pct, job.Name) {
			logger.Debug("encoder progress", logging.Int("progress", pct))
		}
	})

	cmd := exec.Command(job.Binary, job.Args...) //nolint:gosec
	cmd.Stdout = job.Stdout
	cmd.Stderr = state
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	start := s.now()
	logger.Debug("starting encoder",
		logging.String("binary", job.Binary),
		logging.String("args", strings.Join(job.Args, " ")),
		logging.Duration("timeout", job.Timeout),
	)
	if err := cmd.Start(); err != nil {
		outcome := Outcome{ExitCode: -1, Err: fmt.Errorf("start %s: %w", job.Binary, err), Progress: -1}
		logging.ErrorWithContext(logger, "encoder failed to start", "encoder_spawn_failed",
			logging.Error(outcome.Err),
			logging.String(logging.FieldErrorHint, "verify encoder.ffmpeg_binary is installed and executable"),
		)
		return outcome
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var deadline <-chan time.Time
	if job.Timeout > 0 {
		timer := time.NewTimer(job.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	outcome := Outcome{ExitCode: -1}
	for {
		select {
		case err := <-done:
			outcome.Err = err
			if cmd.ProcessState != nil {
				outcome.ExitCode = cmd.ProcessState.ExitCode()
			}
			outcome.Success = outcome.ExitCode == 0
			return s.finish(logger, job, state, start, outcome)
		case <-ticker.C:
			if s.checkStall(logger, job, state) {
				outcome.Stalled = true
			}
		case <-deadline:
			killProcessGroup(cmd)
			<-done
			outcome.TimedOut = true
			outcome.Err = fmt.Errorf("%w after %s", ErrTimeout, job.Timeout)
			return s.finish(logger, job, state, start, outcome)
		case <-ctx.Done():
			killProcessGroup(cmd)
			<-done
			outcome.Err = ctx.Err()
			return s.finish(logger, job, state, start, outcome)
		}
	}
}

// checkStall only warns; the hard timeout is the sole enforcement.
func (s *Supervisor) checkStall(logger *slog.Logger, job Job, state *processState) bool {
	silent := state.silentFor()
	if silent < s.stallThreshold {
		return false
	}
	logging.WarnWithContext(logger, "encoder produced no output within stall threshold", "encoder_stall",
		logging.Duration("silent_for", silent.Round(time.Millisecond)),
		logging.Duration("stall_threshold", s.stallThreshold),
		logging.Duration("timeout", job.Timeout),
		logging.String(logging.FieldImpact, "process keeps running until it exits or reaches its hard timeout"),
		logging.String(logging.FieldErrorHint, "check source media health and disk contention"),
	)
	return true
}

func (s *Supervisor) finish(logger *slog.Logger, job Job, state *processState, start time.Time, outcome Outcome) Outcome {
	snap := state.snapshot()
	outcome.StderrTail = snap.tail
	outcome.Progress = snap.progress
	outcome.Elapsed = s.now().Sub(start)

	if outcome.Success {
		logger.Debug("encoder finished",
			logging.Duration("elapsed", outcome.Elapsed.Round(time.Millisecond)),
			logging.Int("progress", outcome.Progress),
		)
		return outcome
	}

	message := "encoder exited with failure"
	eventType := "encoder_failed"
	if outcome.TimedOut {
		message = "encoder timed out and was killed"
		eventType = "encoder_timeout"
	}
	attrs := []logging.Attr{
		logging.Int("exit_code", outcome.ExitCode),
		logging.Duration("elapsed", outcome.Elapsed.Round(time.Millisecond)),
		logging.Int("progress", outcome.Progress),
		logging.String("stderr_tail", strings.TrimSpace(snap.tail)),
	}
	if outcome.Err != nil {
		attrs = append(attrs, logging.Error(outcome.Err))
	}
	logging.ErrorWithContext(logger, message, eventType, attrs...)
	return outcome
}
