// Package main hosts the clipgen CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the clip store,
// validator, supervisor, and pipeline on demand, and renders results as
// tables or JSON. Batch logic lives in internal/pipeline; commands here only
// parse input and present output.
package main
