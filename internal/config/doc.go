// Package config loads, validates, and normalizes the shaggydog TOML
// configuration.
//
// Load resolves the config file (explicit path, then
// ~/.config/shaggydog/config.toml, then ./shaggydog.toml), decodes it over
// repository defaults, expands ~ in path fields, and validates the result.
// Environment variables prefixed with SHAGGYDOG_ override secrets so API
// keys never need to live in the file.
package config
