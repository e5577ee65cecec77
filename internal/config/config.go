// Package config loads the YAML file that sets up logging and declares the
// collections a recordstore process starts with.
//
// Config file locations (priority order):
//  1. --config flag
//  2. $RECORDSTORE_CONFIG
//  3. ./recordstore.yaml
//  4. $XDG_CONFIG_HOME/recordstore/config.yaml or ~/.config/recordstore/config.yaml
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leengari/recordstore/internal/domain/schema"
)

// Config is the root configuration structure
type Config struct {
	Logging     LoggingConfig      `yaml:"logging"`
	Collections []CollectionConfig `yaml:"collections,omitempty"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`             // debug, info, warn, error
	SeqURL    string `yaml:"seq_url,omitempty"` // empty disables the Seq sink
	AddSource bool   `yaml:"add_source"`
}

// CollectionConfig declares one collection and the records it is seeded with
type CollectionConfig struct {
	Name    string           `yaml:"name"`
	Schema  string           `yaml:"schema,omitempty"` // record type name, defaults to Name
	Keys    [][]string       `yaml:"keys,omitempty"`
	Indexes [][]string       `yaml:"indexes,omitempty"`
	Records []map[string]any `yaml:"records,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the configuration used when no file is found
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	for i := range c.Collections {
		if c.Collections[i].Schema == "" {
			c.Collections[i].Schema = c.Collections[i].Name
		}
	}
}

// Validate checks the logging level and the collection declarations.
func (c *Config) Validate() error {
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, cc := range c.Collections {
		if cc.Name == "" {
			return fmt.Errorf("collection #%d has no name", i+1)
		}
		if seen[cc.Name] {
			return fmt.Errorf("collection '%s' is declared twice", cc.Name)
		}
		seen[cc.Name] = true

		if _, err := cc.Declare(); err != nil {
			return fmt.Errorf("collection '%s': %w", cc.Name, err)
		}
	}
	return nil
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging level %q: %w", l.Level, err)
	}
	return level, nil
}

// Declare builds the record schema of the collection, bound to its name.
func (cc CollectionConfig) Declare() (*schema.Schema, error) {
	name := cc.Schema
	if name == "" {
		name = cc.Name
	}
	return schema.Declare(name, groups(cc.Keys), groups(cc.Indexes), schema.WithCollection(cc.Name))
}

func groups(in [][]string) []schema.Group {
	out := make([]schema.Group, len(in))
	for i, g := range in {
		out[i] = schema.Group(g)
	}
	return out
}

// Summary returns a one-line description for logs and the CLI.
func (c *Config) Summary() string {
	records := 0
	for _, cc := range c.Collections {
		records += len(cc.Records)
	}
	return fmt.Sprintf("%d collection(s), %d seed record(s), log level %s",
		len(c.Collections), records, c.Logging.Level)
}
