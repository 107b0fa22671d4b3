package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the perceptual hasher
type Config struct {
	// Input source: path to a line-delimited list of image paths, or "-" for stdin
	Input string `yaml:"input" json:"input"`

	// Output is the checkpoint/output file, opened read+write and created if absent
	Output string `yaml:"output" json:"output"`

	// Pipeline settings
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PipelineConfig holds worker pool and queue configuration
type PipelineConfig struct {
	// Workers is the number of parallel hash workers; 0 means one per logical core
	Workers int `yaml:"workers" json:"workers"`

	// QueueSize is the capacity of the bounded result queue between workers and
	// the writer
	QueueSize int `yaml:"queue_size" json:"queue_size"`

	// Quiet disables the progress bar
	Quiet bool `yaml:"quiet" json:"quiet"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: "-",
		Pipeline: PipelineConfig{
			Workers:   runtime.NumCPU(),
			QueueSize: 256,
			Quiet:     false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if input := os.Getenv("PHASHER_INPUT"); input != "" {
		c.Input = input
	}
	if output := os.Getenv("PHASHER_OUTPUT"); output != "" {
		c.Output = output
	}
	if workers := os.Getenv("PHASHER_WORKERS"); workers != "" {
		var val int
		fmt.Sscanf(workers, "%d", &val)
		if val > 0 {
			c.Pipeline.Workers = val
		}
	}
	if queueSize := os.Getenv("PHASHER_QUEUE_SIZE"); queueSize != "" {
		var val int
		fmt.Sscanf(queueSize, "%d", &val)
		if val > 0 {
			c.Pipeline.QueueSize = val
		}
	}
	if quiet := os.Getenv("PHASHER_QUIET"); quiet != "" {
		c.Pipeline.Quiet = strings.ToLower(quiet) == "true"
	}
	if logLevel := os.Getenv("PHASHER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("PHASHER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".phasher.yaml",
		".phasher.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "phasher", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "phasher", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".phasher.yaml"),
		filepath.Join(os.Getenv("HOME"), ".phasher.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Input == "" {
		errs = append(errs, errors.New("input source is required (path or \"-\" for stdin)"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output file is required"))
	}

	if c.Pipeline.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Pipeline.QueueSize <= 0 {
		errs = append(errs, errors.New("queue size must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	for key, value := range flags {
		switch key {
		case "input":
			if v, ok := value.(string); ok && v != "" {
				c.Input = v
			}
		case "output":
			if v, ok := value.(string); ok && v != "" {
				c.Output = v
			}
		case "workers":
			if v, ok := value.(int); ok && v > 0 {
				c.Pipeline.Workers = v
			}
		case "queue-size":
			if v, ok := value.(int); ok && v > 0 {
				c.Pipeline.QueueSize = v
			}
		case "quiet":
			if v, ok := value.(bool); ok {
				c.Pipeline.Quiet = v
			}
		case "log-level":
			if v, ok := value.(string); ok && v != "" {
				c.Logging.Level = v
			}
		}
	}
}

// Load creates a fully resolved configuration, merging in order of increasing
// precedence: defaults, config file, environment, command line flags
func Load(configFile string, flags map[string]interface{}) (*Config, error) {
	// Load .env file if present; missing files are fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	cfg.MergeCommandLineFlags(flags)

	return cfg, nil
}
