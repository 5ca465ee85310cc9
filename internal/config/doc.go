// Package config loads, normalizes, and validates gridsmith configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STEAMGRIDDB_API_KEY. The Config type centralizes every knob the CLI and
// scheduler need, allowing output directories and provider credentials to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
