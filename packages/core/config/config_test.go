package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsDefault())
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetBail())
	assert.Equal(t, "auto", cfg.Tier)
	assert.Equal(t, int64(30000), cfg.TimeoutDuration().Milliseconds())
}

func TestFindAndLoadConfig(t *testing.T) {
	t.Run("no file returns defaults", func(t *testing.T) {
		cfg, err := FindAndLoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.True(t, cfg.IsDefault())
	})

	t.Run("file values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := `{"timeout": 5000, "tier": "reference", "validateSSL": false, "headers": {"X-Team": "api"}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".voltrc"), []byte(content), 0644))

		cfg, err := FindAndLoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, 5000, cfg.Timeout)
		assert.Equal(t, "reference", cfg.Tier)
		assert.False(t, cfg.GetValidateSSL())
		assert.True(t, cfg.GetFollowRedirects(), "unset booleans keep their default")
		assert.Equal(t, "api", cfg.Headers["X-Team"])
		assert.False(t, cfg.IsDefault())
	})

	t.Run("search order", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "volt.config.json"), []byte(`{"tier":"accelerated"}`), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".voltrc.json"), []byte(`{"tier":"reference"}`), 0644))

		cfg, err := FindAndLoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "accelerated", cfg.Tier)
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "volt.config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config")
	})
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}

	merged := base.Merge(&Config{
		Bail:    BoolPtr(true),
		Verbose: BoolPtr(false),
		Output:  "junit",
		Headers: map[string]string{"B": "2"},
	})

	assert.True(t, merged.GetBail())
	assert.Equal(t, "junit", merged.Output)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers, "merge does not mutate the receiver")
	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volt.config.json")
	cfg := DefaultConfig().Merge(&Config{Proxy: "http://proxy:8080"})
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy:8080", loaded.Proxy)
}
