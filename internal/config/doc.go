// Package config loads kanacards settings from defaults, an optional YAML
// file and KANACARDS_* environment variables, and validates the result.
package config
