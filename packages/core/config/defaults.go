package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000, // 30 seconds
		Tier:            "auto",
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Output:          "console",
		History:         BoolPtr(false),
		HistoryPath:     DefaultHistoryPath(),
		Bail:            BoolPtr(false),
		Verbose:         BoolPtr(false),
		NoColor:         BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.EnvFile == d.EnvFile &&
		c.Timeout == d.Timeout &&
		c.Tier == d.Tier &&
		c.GetFollowRedirects() == d.GetFollowRedirects() &&
		c.MaxRedirects == d.MaxRedirects &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.Proxy == d.Proxy &&
		len(c.Headers) == 0 &&
		c.Output == d.Output &&
		c.OutputFile == d.OutputFile &&
		c.GetHistory() == d.GetHistory() &&
		c.HistoryPath == d.HistoryPath &&
		c.GetBail() == d.GetBail() &&
		c.GetVerbose() == d.GetVerbose() &&
		c.GetNoColor() == d.GetNoColor()
}
