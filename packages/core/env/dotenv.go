package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadDotEnv reads the dotenv file at path. It accepts KEY=value lines with
// an optional "export " prefix, single or double quoted values and # comment
// lines. Double quoted values expand \n, \t and \". Values are kept verbatim
// otherwise, including {{tokens}} and a trailing " # ...".
//
// The process environment is not modified.
func LoadDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	vars, err := parseDotEnv(file)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vars, nil
}

func parseDotEnv(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if ok {
			vars[key] = value
		}
	}
	return vars, scanner.Err()
}

// parseDotEnvLine returns the assignment on line. Blank lines, comments and
// lines without "=" or without a key yield ok == false.
func parseDotEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(value)), true
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	switch {
	case first == '"' && last == '"':
		return dquoteEscapes.Replace(value[1 : len(value)-1])
	case first == '\'' && last == '\'':
		return value[1 : len(value)-1]
	}
	return value
}

var dquoteEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\"`, `"`)
