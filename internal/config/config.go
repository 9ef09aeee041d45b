package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/json2sql/internal/emitter"
	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/flattener"
	"github.com/mcncl/json2sql/internal/sanitize"
	"github.com/mcncl/json2sql/internal/schema"
	"github.com/mcncl/json2sql/internal/tokenizer"
)

// Config represents the complete configuration for json2sql
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Flatten  FlattenConfig  `yaml:"flatten"`
	Limits   LimitsConfig   `yaml:"limits"`
	Naming   NamingConfig   `yaml:"naming"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Database DatabaseConfig `yaml:"database"`
	Dev      DevConfig      `yaml:"dev"`
}

// OutputConfig controls statement rendering
type OutputConfig struct {
	Terminator    string `yaml:"terminator"`
	Table         string `yaml:"table"`
	DDL           string `yaml:"ddl"`
	DDLColumnType string `yaml:"ddl_column_type"`
}

// FlattenConfig controls how nested values are treated
type FlattenConfig struct {
	Nested string `yaml:"nested"`
}

// LimitsConfig holds the fixed bounds of a run
type LimitsConfig struct {
	InitialTokens   int  `yaml:"initial_tokens"`
	MaxTokens       int  `yaml:"max_tokens"`
	MaxRows         int  `yaml:"max_rows"`
	MaxKeyLength    int  `yaml:"max_key_length"`
	MaxValueLength  int  `yaml:"max_value_length"`
	MaxLineLength   int  `yaml:"max_line_length"`
	AbortOnCapacity bool `yaml:"abort_on_capacity"`
}

// NamingConfig controls column naming
type NamingConfig struct {
	Style          string            `yaml:"style"`
	ColumnMappings map[string]string `yaml:"column_mappings"`
}

// RuntimeConfig controls line processing
type RuntimeConfig struct {
	Workers int  `yaml:"workers"`
	Dedup   bool `yaml:"dedup"`
}

// DatabaseConfig selects an optional database to execute statements against
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultMaxLineLength bounds a single input line.
const DefaultMaxLineLength = 100000

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Terminator:    emitter.TerminatorGO,
			DDLColumnType: schema.DefaultColumnType,
		},
		Flatten: FlattenConfig{
			Nested: string(flattener.NestedFlatten),
		},
		Limits: LimitsConfig{
			InitialTokens:  tokenizer.DefaultInitialTokens,
			MaxTokens:      tokenizer.DefaultMaxTokens,
			MaxRows:        flattener.DefaultMaxRows,
			MaxKeyLength:   flattener.DefaultMaxKeyLength,
			MaxValueLength: flattener.DefaultMaxValueLength,
			MaxLineLength:  DefaultMaxLineLength,
		},
		Naming: NamingConfig{
			Style:          string(sanitize.StyleUpper),
			ColumnMappings: make(map[string]string),
		},
		Runtime: RuntimeConfig{
			Workers: 1,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".json2sql.yml", ".json2sql.yaml", "json2sql.yml", "json2sql.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated values and bounds
func (c *Config) Validate() error {
	if err := emitter.ValidateTerminator(c.Output.Terminator); err != nil {
		return errors.NewConfigError("invalid output.terminator", err)
	}
	if _, err := flattener.ParseNestedMode(c.Flatten.Nested); err != nil {
		return errors.NewConfigError("invalid flatten.nested", err)
	}
	if _, err := sanitize.ParseStyle(c.Naming.Style); err != nil {
		return errors.NewConfigError("invalid naming.style", err)
	}

	bounds := []struct {
		name  string
		value int
	}{
		{"limits.initial_tokens", c.Limits.InitialTokens},
		{"limits.max_tokens", c.Limits.MaxTokens},
		{"limits.max_rows", c.Limits.MaxRows},
		{"limits.max_key_length", c.Limits.MaxKeyLength},
		{"limits.max_value_length", c.Limits.MaxValueLength},
		{"limits.max_line_length", c.Limits.MaxLineLength},
		{"runtime.workers", c.Runtime.Workers},
	}
	for _, b := range bounds {
		if b.value <= 0 {
			return errors.NewConfigError(fmt.Sprintf("%s must be positive, got %d", b.name, b.value), errors.ErrInvalidConfigValue)
		}
	}
	if c.Limits.MaxTokens < c.Limits.InitialTokens {
		return errors.NewConfigError("limits.max_tokens must not be smaller than limits.initial_tokens", errors.ErrInvalidConfigValue)
	}
	if (c.Database.Driver == "") != (c.Database.DSN == "") {
		return errors.NewConfigError("database.driver and database.dsn must be set together", errors.ErrInvalidConfigValue)
	}
	return nil
}

// NestedMode returns the validated flatten mode
func (c *Config) NestedMode() flattener.NestedMode {
	mode, _ := flattener.ParseNestedMode(c.Flatten.Nested)
	return mode
}

// NamingStyle returns the validated naming style
func (c *Config) NamingStyle() sanitize.Style {
	style, _ := sanitize.ParseStyle(c.Naming.Style)
	return style
}

// Overrides carries CLI flag values. Zero values mean "not given" so the
// config file value is kept.
type Overrides struct {
	Terminator      string
	Table           string
	DDL             string
	Nested          string
	Naming          string
	Workers         int
	Driver          string
	DSN             string
	Strict          bool
	AbortOnCapacity bool
	Dedup           bool
	Verbose         bool
}

// Apply merges CLI overrides into c
func (c *Config) Apply(o Overrides) {
	if o.Terminator != "" {
		c.Output.Terminator = o.Terminator
	}
	if o.Table != "" {
		c.Output.Table = o.Table
	}
	if o.DDL != "" {
		c.Output.DDL = o.DDL
	}
	if o.Nested != "" {
		c.Flatten.Nested = o.Nested
	}
	if o.Strict {
		c.Flatten.Nested = string(flattener.NestedStrict)
	}
	if o.Naming != "" {
		c.Naming.Style = o.Naming
	}
	if o.Workers > 0 {
		c.Runtime.Workers = o.Workers
	}
	if o.Driver != "" {
		c.Database.Driver = o.Driver
	}
	if o.DSN != "" {
		c.Database.DSN = o.DSN
	}
	c.Limits.AbortOnCapacity = c.Limits.AbortOnCapacity || o.AbortOnCapacity
	c.Runtime.Dedup = c.Runtime.Dedup || o.Dedup
	c.Dev.Verbose = c.Dev.Verbose || o.Verbose
}

// LoadConfigWithCLI loads config with CLI argument precedence. An empty
// configPath uses the discovered config file, if any.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("cannot load config '%s'", configPath), err)
		}
		cfg = fileConfig
	}

	cfg.Apply(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
