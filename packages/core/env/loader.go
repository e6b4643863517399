package env

import (
	"os"
	"strings"
)

// Environment is a named set of variables, typically loaded from a dotenv file.
type Environment struct {
	Name      string
	Variables map[string]string
}

// LoadEnvironment loads the dotenv file at path into an Environment named
// name. An empty path yields an empty environment.
func LoadEnvironment(name, path string) (*Environment, error) {
	env := &Environment{
		Name:      name,
		Variables: make(map[string]string),
	}
	if path == "" {
		return env, nil
	}

	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}
	for k, v := range vars {
		env.Variables[k] = v
	}
	return env, nil
}

// MergeVariables merges sources left to right; later sources win. Callers
// pass environment variables before chain variables so that chain variables
// take precedence.
func MergeVariables(sources ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// LoadSystemEnv returns the process environment. With a prefix, only names
// starting with it are kept and the prefix is stripped.
func LoadSystemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
