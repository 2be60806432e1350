package supervisor

import (
	"math"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// progressPattern matches the elapsed-output marker ffmpeg prints on stderr.
var progressPattern = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2})`)

// carryBytes keeps enough of the previous chunk to match a marker split across writes.
const carryBytes = 24

// processState is the single mutable record for one supervised process. It is
// written by the stderr copier and read by the stall monitor and, after exit,
// by Run.
type processState struct {
	mu           sync.Mutex
	now          func() time.Time
	expected     time.Duration
	tailLimit    int
	tail         []byte
	carry        []byte
	lastActivity time.Time
	elapsed      time.Duration
	progress     int
	onProgress   func(int)
}

func newProcessState(now func() time.Time, expected time.Duration, tailLimit int, onProgress func(int)) *processState {
	return &processState{
		now:          now,
		expected:     expected,
		tailLimit:    tailLimit,
		lastActivity: now(),
		progress:     -1,
		onProgress:   onProgress,
	}
}

// Write records one diagnostic chunk. It never fails so the child is never
// blocked on a full pipe.
func (p *processState) Write(chunk []byte) (int, error) {
	p.mu.Lock()
	p.lastActivity = p.now()

	p.tail = append(p.tail, chunk...)
	if over := len(p.tail) - p.tailLimit; over > 0 {
		p.tail = append(p.tail[:0], p.tail[over:]...)
	}

	window := append(p.carry, chunk...)
	changed := false
	if locs := progressPattern.FindAllSubmatchIndex(window, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		if elapsed, ok := markerDuration(window, last); ok {
			p.elapsed = elapsed
			if pct := percentOf(elapsed, p.expected); pct != p.progress {
				p.progress = pct
				changed = true
			}
		}
		window = window[last[1]:]
	}
	if len(window) > carryBytes {
		window = window[len(window)-carryBytes:]
	}
	p.carry = append([]byte(nil), window...)

	progress, notify := p.progress, p.onProgress
	p.mu.Unlock()

	if changed && notify != nil {
		notify(progress)
	}
	return len(chunk), nil
}

func markerDuration(window []byte, loc []int) (time.Duration, bool) {
	if len(loc) != 8 {
		return 0, false
	}
	h, errH := strconv.Atoi(string(window[loc[2]:loc[3]]))
	m, errM := strconv.Atoi(string(window[loc[4]:loc[5]]))
	s, errS := strconv.Atoi(string(window[loc[6]:loc[7]]))
	if errH != nil || errM != nil || errS != nil {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, true
}

// percentOf returns min(100, round(elapsed/expected*100)), or -1 when the
// expected duration is unknown.
func percentOf(elapsed, expected time.Duration) int {
	if expected <= 0 {
		return -1
	}
	pct := int(math.Round(elapsed.Seconds() / expected.Seconds() * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

func (p *processState) silentFor() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now().Sub(p.lastActivity)
}

type stateSnapshot struct {
	tail     string
	elapsed  time.Duration
	progress int
}

func (p *processState) snapshot() stateSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return stateSnapshot{tail: string(p.tail), elapsed: p.elapsed, progress: p.progress}
}
