// Package config loads, normalizes, and validates clipgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// MAX_FILE_SIZE_GB and CLIP_BATCH_SIZE. The Config type centralizes every knob
// the pipeline and CLI need: output directories, encoder timeouts, stage batch
// sizes, thumbnail styling, and clip encoding parameters.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
