// Package config loads YAML configuration files. References like
// ${ANTHROPIC_API_KEY} in the file text are expanded from the environment
// before parsing, so secrets stay out of the file itself.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator lets a config type check itself after loading. Load calls it
// automatically when the target implements it.
type Validator interface {
	Validate() error
}

// Load reads filename, expands environment references, and unmarshals the
// result into target, then validates it if target is a Validator.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("config: parse %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: validate: %w", err)
		}
	}
	return nil
}
