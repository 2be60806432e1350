// Package mirror indexes completed clips in SQLite for querying.
//
// The mirror is read-only with respect to clip records: Sync copies records
// tagged completed into the clips table and never touches the JSON files.
// Inserts are keyed by clip id, so repeated syncs are idempotent.
package mirror
