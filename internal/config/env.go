package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "BOUNCE_"

// LoadEnv reads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from BOUNCE_<KEY> variables, one per key in Keys.
func (c *Config) ApplyEnv() error {
	for _, key := range Keys() {
		name := EnvPrefix + strings.ToUpper(key)
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
