package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\${([^}]+)}`)

// LoadAndExpandYaml reads baseDir/filename.yml and expands ${VAR} references.
func LoadAndExpandYaml(baseDir, filename string) (string, error) {
	file := filepath.Join(baseDir, filename+".yml")
	raw, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s.yml not found in %s", filename, baseDir)
		}
		return "", fmt.Errorf("read file: %w", err)
	}

	return ExpandEnvStrict(string(raw))
}

// ExpandEnvStrict expands ${VAR} references and fails if any of them is unset.
func ExpandEnvStrict(s string) (string, error) {
	var missing []error
	for _, m := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(m[1]); !ok {
			missing = append(missing, fmt.Errorf("environment variable %s is not set", m[1]))
		}
	}
	if len(missing) > 0 {
		return "", errors.Join(missing...)
	}

	return os.ExpandEnv(s), nil
}
