// Package config loads, validates, and normalizes Quill configuration
// from TOML, applying repository defaults for unset values.
package config
