// Package config loads, validates, and normalizes packwright configuration.
//
// Configuration comes from a TOML file (default ~/.config/packwright/
// config.toml, or packwright.toml in the working directory). Load applies
// defaults first, then file values, then normalization (path expansion,
// bound clamping) and validation. Other packages receive a fully resolved
// *Config and never re-read the file.
package config
