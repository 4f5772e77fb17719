// Package config loads regexgen settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/regexgen/internal/sampler"
)

// Config holds all regexgen configuration.
type Config struct {
	// Samples drawn per pattern
	Count int `yaml:"count"`

	// Output format tokens, e.g. JSON, XML, YAML, PLAIN
	Formats []string `yaml:"formats"`

	OutputDir string `yaml:"output_dir"`

	// Pattern file (.yaml, .json, .toml); empty uses the built-in set
	PatternsFile string `yaml:"patterns_file"`

	// Range the per-sampler repetition bound is drawn from
	MinRepeat int `yaml:"min_repeat"`
	MaxRepeat int `yaml:"max_repeat"`

	// Nest aggregated JSON samples under their pattern key
	JSONGrouped bool `yaml:"json_grouped"`

	// Run ledger
	History bool   `yaml:"history"`
	DBPath  string `yaml:"db_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Count:     10,
		Formats:   []string{"JSON"},
		OutputDir: "output",
		MinRepeat: sampler.DefaultMinRepeat,
		MaxRepeat: sampler.DefaultMaxRepeat,
		History:   true,
		DBPath:    DefaultDBPath(),
	}
}

// DefaultDBPath returns ~/.regexgen/history.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".regexgen", "history.db")
}

// Load reads path over the defaults and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("REGEXGEN_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REGEXGEN_COUNT: %w", err)
		}
		c.Count = n
	}
	if v := os.Getenv("REGEXGEN_FORMAT"); v != "" {
		c.Formats = strings.Split(v, ",")
	}
	if v := os.Getenv("REGEXGEN_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("REGEXGEN_PATTERNS"); v != "" {
		c.PatternsFile = v
	}
	if v := os.Getenv("REGEXGEN_DB"); v != "" {
		c.DBPath = v
	}
	return nil
}

// Validate checks the configuration for values a run cannot use.
func (c *Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", c.Count)
	}
	if c.MinRepeat < 0 || c.MaxRepeat < c.MinRepeat {
		return fmt.Errorf("invalid repeat range %d..%d", c.MinRepeat, c.MaxRepeat)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	return nil
}
