package graphdb

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config controls the engine and the console.
//
// Example config.yaml:
//
//	log_level: info
//	log_format: text
//	max_loop_iterations: 1000
//	load_sample: true
//	prompt: "gremlin> "
type Config struct {
	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level"`
	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format"`
	// MaxLoopIterations bounds times()/until() rewinds per loop; 0 means unlimited
	MaxLoopIterations int `yaml:"max_loop_iterations"`
	// LoadSample loads the TinkerPop modern graph on startup
	LoadSample bool `yaml:"load_sample"`
	// Prompt is printed by the console before each line
	Prompt string `yaml:"prompt"`
	// Metrics enables Prometheus collectors
	Metrics bool `yaml:"metrics"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "warn",
		LogFormat:         "text",
		MaxLoopIterations: 0,
		LoadSample:        false,
		Prompt:            "gremlin> ",
		Metrics:           false,
	}
}

// LoadConfig reads a YAML file over the defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GREMLINGRAPH_* environment variables.
//
//	GREMLINGRAPH_LOG_LEVEL            - logrus level name
//	GREMLINGRAPH_LOG_FORMAT           - text or json
//	GREMLINGRAPH_MAX_LOOP_ITERATIONS  - loop fuse, 0 for unlimited
//	GREMLINGRAPH_LOAD_SAMPLE          - load the modern graph on startup
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("GREMLINGRAPH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GREMLINGRAPH_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("GREMLINGRAPH_MAX_LOOP_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GREMLINGRAPH_MAX_LOOP_ITERATIONS %q: %w", v, err)
		}
		c.MaxLoopIterations = n
	}
	if v := os.Getenv("GREMLINGRAPH_LOAD_SAMPLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid GREMLINGRAPH_LOAD_SAMPLE %q: %w", v, err)
		}
		c.LoadSample = b
	}
	return c.Validate()
}

// Validate checks field values
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.MaxLoopIterations < 0 {
		return fmt.Errorf("max_loop_iterations must not be negative, got %d", c.MaxLoopIterations)
	}
	return nil
}

// ConfigureLogger applies level and format to a logrus logger
func (c *Config) ConfigureLogger(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logger.SetLevel(level)
	if strings.ToLower(c.LogFormat) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
