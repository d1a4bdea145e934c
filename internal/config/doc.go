// Package config loads, normalizes, and validates expertstats configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// EXPERTSTATS_API_TOKEN. The Config type centralizes every knob the sync
// pipeline and CLI need, so data, log, and cache directories plus the remote
// API credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
