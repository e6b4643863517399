package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/volt/packages/accel"
	"github.com/abdul-hamid-achik/volt/packages/core/env"
	"github.com/abdul-hamid-achik/volt/packages/http"
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// selectEngine resolves a tier name to an engine. The accelerated tier is
// loaded and self-checked before it is returned.
func selectEngine(ctx context.Context, tierName string, logger *slog.Logger) (accel.Engine, error) {
	tier, err := accel.ParseTier(tierName)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	engine, err := accel.New(accel.WithLogger(logger)).Select(ctx, tier)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return engine, nil
}

// SystemVarPrefix marks process environment variables that become run
// variables, e.g. VOLT_VAR_baseUrl sets {{baseUrl}}.
const SystemVarPrefix = "VOLT_VAR_"

// loadVariables returns the VOLT_VAR_* process variables overlaid with the
// dotenv file at path. An empty path skips the file.
func loadVariables(path string) (map[string]string, error) {
	e, err := env.LoadEnvironment(filepath.Base(path), path)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("loading env file: %w", err))
	}
	return env.MergeVariables(env.LoadSystemEnv(SystemVarPrefix), e.Variables), nil
}

// parseVarFlags turns repeated name=value flags into a variable map.
func parseVarFlags(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid --var %q (expected name=value)", pair))
		}
		vars[strings.TrimSpace(name)] = value
	}
	return vars, nil
}

// readInput returns the contents of path, or of stdin when path is "-" or
// empty.
func readInput(in io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", withExitCode(ExitUsageError, fmt.Errorf("reading %s: %w", path, err))
	}
	return string(data), nil
}

// readResponse loads a recorded response file.
func readResponse(path string) (*http.Response, error) {
	if path == "" {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("--response is required"))
	}
	resp, err := http.ReadResponseFile(path)
	if err != nil {
		return nil, withExitCode(ExitParseError, err)
	}
	return resp, nil
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isYAMLFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if isSuiteFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

// isSuiteFile accepts YAML and JSON suites named explicitly. Directory walks
// only pick up YAML, since JSON files next to suites are usually recorded
// responses or config.
func isSuiteFile(path string) bool {
	return isYAMLFile(path) || strings.EqualFold(filepath.Ext(path), ".json")
}

func isYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
