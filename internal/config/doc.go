// Package config loads, normalizes, and validates gantry's TOML
// configuration.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/gantry/config.toml, then a gantry.toml in the working directory,
// falling back to built-in defaults when no file exists. All path fields are
// tilde-expanded and made absolute during load so downstream packages never
// re-resolve them.
package config
