// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	tolerance := cfg.Engine.Combinations.Tolerance
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Engine        EngineConfig        `yaml:"engine"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// EngineConfig holds the matching and reconciliation tuning knobs
type EngineConfig struct {
	Matching     MatchingConfig     `yaml:"matching"`
	Combinations CombinationsConfig `yaml:"combinations"`
}

// MatchingConfig holds the fuzzy matcher confidence thresholds
type MatchingConfig struct {
	MinConfidence           float64 `yaml:"min_confidence"`
	AutoSuggestThreshold    float64 `yaml:"auto_suggest_threshold"`
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold"`
}

// CombinationsConfig holds the combination finder defaults
type CombinationsConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	MaxSize   int     `yaml:"max_size"`
	MaxNodes  int     `yaml:"max_nodes"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${FINSIGHT_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("FINSIGHT_PORT", 8080),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("FINSIGHT_DB_PATH", "finsight.db"),
		},
		Engine: EngineConfig{
			Matching: MatchingConfig{
				MinConfidence:           getEnvFloat("FINSIGHT_MIN_CONFIDENCE", 0.5),
				AutoSuggestThreshold:    getEnvFloat("FINSIGHT_AUTO_SUGGEST_THRESHOLD", 0.8),
				HighConfidenceThreshold: getEnvFloat("FINSIGHT_HIGH_CONFIDENCE_THRESHOLD", 0.95),
			},
			Combinations: CombinationsConfig{
				Tolerance: getEnvFloat("FINSIGHT_COMBINATION_TOLERANCE", 0.01),
				MaxSize:   getEnvInt("FINSIGHT_COMBINATION_MAX_SIZE", 5),
				MaxNodes:  getEnvInt("FINSIGHT_COMBINATION_MAX_NODES", 100000),
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills zero values left by a partial YAML file. The engine
// thresholds in particular must never load as zero or every candidate would
// pass the confidence floor.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "finsight.db"
	}
	if c.Engine.Matching.MinConfidence == 0 {
		c.Engine.Matching.MinConfidence = 0.5
	}
	if c.Engine.Matching.AutoSuggestThreshold == 0 {
		c.Engine.Matching.AutoSuggestThreshold = 0.8
	}
	if c.Engine.Matching.HighConfidenceThreshold == 0 {
		c.Engine.Matching.HighConfidenceThreshold = 0.95
	}
	if c.Engine.Combinations.Tolerance == 0 {
		c.Engine.Combinations.Tolerance = 0.01
	}
	if c.Engine.Combinations.MaxSize == 0 {
		c.Engine.Combinations.MaxSize = 5
	}
	if c.Engine.Combinations.MaxNodes == 0 {
		c.Engine.Combinations.MaxNodes = 100000
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Validate checks that the loaded thresholds are coherent
func (c *Config) Validate() error {
	m := c.Engine.Matching
	if m.MinConfidence < 0 || m.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0,1], got %v", m.MinConfidence)
	}
	if m.AutoSuggestThreshold < m.MinConfidence {
		return fmt.Errorf("auto_suggest_threshold %v below min_confidence %v",
			m.AutoSuggestThreshold, m.MinConfidence)
	}
	if m.HighConfidenceThreshold < m.AutoSuggestThreshold || m.HighConfidenceThreshold > 1 {
		return fmt.Errorf("high_confidence_threshold %v out of range", m.HighConfidenceThreshold)
	}
	if c.Engine.Combinations.Tolerance < 0 {
		return fmt.Errorf("combination tolerance must be non-negative, got %v",
			c.Engine.Combinations.Tolerance)
	}
	if c.Engine.Combinations.MaxSize < 1 {
		return fmt.Errorf("combination max_size must be at least 1, got %d",
			c.Engine.Combinations.MaxSize)
	}
	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.Atoi(val); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.ParseFloat(val, 64); err == nil {
			return result
		}
	}
	return fallback
}
