// Package config loads, validates, and normalizes Bobbin configuration.
//
// Configuration is TOML with a single file located at
// ~/.config/bobbin/config.toml by default, overridable per invocation. All
// path fields are expanded (including ~) and made absolute during load, and
// numeric limits are clamped to usable values so downstream constructors can
// trust the struct without re-checking.
package config
