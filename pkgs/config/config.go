// Package config loads the optional xtml.yaml project file that seeds
// builds with predefined variables and an output directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/types"
)

// DefaultFileName is looked up next to the built file when no explicit
// config path is given.
const DefaultFileName = "xtml.yaml"

// Define is one predefined variable.
type Define struct {
	Value string `yaml:"value"`
	// Type is "string" (default) or "number"; number requires the value
	// to be a digit string.
	Type string `yaml:"type"`
}

// Config is the parsed project file.
type Config struct {
	// Defines are bound into the root environment before each build.
	Defines map[string]Define `yaml:"defines"`
	// OutputDir overrides the write-alongside-input default.
	OutputDir string `yaml:"output_dir"`
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrIO, fmt.Sprintf("cannot read config file %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrParse, fmt.Sprintf("invalid config file %s", path), err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromDir returns the config found in dir, or an empty config when
// the file does not exist.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	for name, def := range c.Defines {
		switch def.Type {
		case "", "string", "number":
		default:
			return errors.Newf(errors.ErrParse, "define %q has unknown type %q", name, def.Type)
		}
		if def.Type == "number" && !types.IsDigits(def.Value) {
			return errors.Newf(errors.ErrParse, "define %q: %q is not a valid number", name, def.Value)
		}
	}
	return nil
}

// Apply binds every define into env.
func (c *Config) Apply(env types.Environment) {
	for name, def := range c.Defines {
		if def.Type == "number" {
			env.Define(name, types.NumFromString(def.Value))
		} else {
			env.Define(name, types.Str(def.Value))
		}
	}
}
