package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// Config represents the volt configuration file
type Config struct {
	EnvFile         string            `json:"envFile,omitempty"`
	Timeout         int               `json:"timeout,omitempty"` // milliseconds
	Tier            string            `json:"tier,omitempty"`    // auto, reference or accelerated
	FollowRedirects *bool             `json:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"` // Default headers for all requests
	Output          string            `json:"output,omitempty"`  // console, json, junit or tap
	OutputFile      string            `json:"outputFile,omitempty"`
	History         *bool             `json:"history,omitempty"`
	HistoryPath     string            `json:"historyPath,omitempty"`
	Bail            *bool             `json:"bail,omitempty"`
	Verbose         *bool             `json:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetHistory returns whether runs are recorded, defaulting to false
func (c *Config) GetHistory() bool {
	return getBool(c.History, false)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the request timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".volt.config.json",
	"volt.config.json",
	".voltrc",
	".voltrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return DefaultConfig().Merge(&fileCfg), nil
}

// Merge returns a copy of c with every field set in other applied over it.
// Zero values and nil booleans in other leave c's value in place; headers
// are merged key by key.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}
	result := *c

	override(&result.EnvFile, other.EnvFile)
	override(&result.Tier, other.Tier)
	override(&result.Proxy, other.Proxy)
	override(&result.Output, other.Output)
	override(&result.OutputFile, other.OutputFile)
	override(&result.HistoryPath, other.HistoryPath)
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}

	for _, p := range []boolOverride{
		{&result.FollowRedirects, other.FollowRedirects},
		{&result.ValidateSSL, other.ValidateSSL},
		{&result.History, other.History},
		{&result.Bail, other.Bail},
		{&result.Verbose, other.Verbose},
		{&result.NoColor, other.NoColor},
	} {
		if p.src != nil {
			*p.dst = p.src
		}
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		maps.Copy(headers, result.Headers)
		maps.Copy(headers, other.Headers)
		result.Headers = headers
	}
	return &result
}

type boolOverride struct {
	dst **bool
	src *bool
}

func override[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
