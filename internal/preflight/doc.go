// Package preflight provides readiness checks for the encoder binaries and
// filesystem paths clipgen depends on.
//
// The CLI "clipgen doctor" command renders every check. Checks report
// results and never mutate state.
package preflight
