// Package config loads, normalizes, and validates whisperarc configuration.
//
// Configuration is a single TOML file resolved from an explicit --config
// path, ~/.config/whisperarc/config.toml, or a project-local whisperarc.toml.
// Defaults are applied before decoding so an absent file still yields a
// usable config. All path fields are expanded and absolute after Load.
package config
