// Package config loads, normalizes, and validates woffsmith configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// conversion pipeline and CLI need: the default target format, encoder
// compression levels, worker pool size, and logging output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
