// Package config loads, normalizes, and validates podcastdl configuration.
//
// Configuration lives in a TOML file resolved from an explicit --config flag,
// then ~/.config/podcastdl/config.toml, then ./podcastdl.toml. Missing files
// are not an error; defaults apply. All path fields are tilde-expanded and
// made absolute during normalization so downstream code never deals with
// relative or home-prefixed paths.
package config
