package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the simulation engine.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// LimitsConfig bounds request sizes accepted at the service boundary.
// Violations are configuration errors on the caller's side, reported
// eagerly and never silently clamped.
type LimitsConfig struct {
	MaxSteps     int `yaml:"maxSteps"`
	MaxEnsemble  int `yaml:"maxEnsemble"`
	MaxDimension int `yaml:"maxDimension"`
	MaxLag       int `yaml:"maxLag"`
	MaxBins      int `yaml:"maxBins"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("ROU_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8085",
			MetricsAddress:  ":2112",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Limits: LimitsConfig{
			MaxSteps:     1_000_000,
			MaxEnsemble:  100_000,
			MaxDimension: 16,
			MaxLag:       100_000,
			MaxBins:      10_000,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROU_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("ROU_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("ROU_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ROU_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("ROU_ENGINE_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxSteps = n
		}
	}
	if v := os.Getenv("ROU_ENGINE_MAX_ENSEMBLE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxEnsemble = n
		}
	}
	if v := os.Getenv("ROU_ENGINE_MAX_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxDimension = n
		}
	}
	if v := os.Getenv("ROU_ENGINE_MAX_LAG"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxLag = n
		}
	}
	if v := os.Getenv("ROU_ENGINE_MAX_BINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxBins = n
		}
	}
	if v := os.Getenv("ROU_ENGINE_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("ROU_ENGINE_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("ROU_ENGINE_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
}
