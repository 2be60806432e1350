// Package pipeline turns a batch of span requests into clips in three
// barrier-separated stages: metadata, thumbnails, and final clips.
//
// Stage 1 runs sequentially. Stages 2 and 3 split their input into fixed-size
// chunks; items inside a chunk run concurrently and the next chunk starts only
// after the whole chunk joins. Per-item failures never abort a batch; they are
// folded into the stage counts and leave the record at its last successful
// tag. A file lock on the output directory keeps a second batch from running
// against the same records.
package pipeline
