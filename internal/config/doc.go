// Package config loads, normalizes, and validates transcriber configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY. The Config type centralizes the invocation context for the
// model endpoint, the default processing options, and output locations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, resolved credentials, and clear validation errors; the
// pipeline itself never touches the environment.
package config
