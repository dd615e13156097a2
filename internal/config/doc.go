// Package config loads, normalizes, and validates gridtrace configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GRIDTRACE_TEMPLATE. The Config type centralizes the ROI rectangle, grid
// geometry, classifier thresholds, and frame-rate constants the engine needs,
// alongside the output and state directories used by the CLI.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical strategy names, and clear validation errors.
package config
