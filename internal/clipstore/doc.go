// Package clipstore persists one JSON record per clip under the output
// directory and owns the stage tag vocabulary.
//
// Records are rewritten whole on every change. The store holds no locks: a
// record is only ever written by the pipeline stage that currently owns it,
// and concurrent batches are excluded by the pipeline's run lock.
package clipstore
