package config

import (
	"os"
	"path/filepath"
)

// DefaultHistoryPath returns the history database location under the user
// config directory, falling back to the working directory.
func DefaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".volt-history.db"
	}
	return filepath.Join(dir, "volt", "history.db")
}
