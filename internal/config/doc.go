// Package config loads, normalizes, and validates playbridge configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the PLAYBRIDGE_LOG_LEVEL
// environment override. The Config type centralizes the knobs the CLI and the
// conversion pipeline need: logging, the external resolver backend, expansion
// and de-duplication defaults, the archive size ceiling, and download options.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
