// Package media validates candidate source files before any encoder process
// is spawned.
//
// Validator answers two questions: does a path name a readable regular file
// under the hard size ceiling, and is it on the blacklist of sources known to
// time out the encoder repeatedly. Results are values, never panics or
// surfaced errors, so callers can log and skip without unwinding a batch.
package media
