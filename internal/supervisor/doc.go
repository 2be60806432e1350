// Package supervisor runs the external encoder as a child process and reduces
// every outcome to a success flag.
//
// Each invocation gets a hard timeout that kills the whole process group, an
// advisory stall monitor that only logs when the diagnostic stream goes
// silent, and incremental parsing of "time=HH:MM:SS" progress markers. The
// per-process state (last activity, output tail, progress) lives in a single
// processState value fed directly by the child's stderr. Retries are the
// caller's concern; Run never retries and never returns an error.
package supervisor
