// Package config handles configuration loading and management for volt.
//
// It provides functionality for:
//   - Loading configuration from .volt.config.json, volt.config.json, .voltrc or .voltrc.json
//   - Default configuration values
//   - Merging configurations where explicitly set values win
package config
