// Package config loads, normalizes, and validates Curator's TOML
// configuration.
package config
