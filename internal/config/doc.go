// Package config loads, normalizes, and validates ytbatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/ytbatch/config.toml or a
// project-local ytbatch.toml. Always obtain settings through this package so
// downstream code receives sanitized paths, a canonical download mode, and
// clear validation errors.
package config
