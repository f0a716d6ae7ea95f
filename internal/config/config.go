package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"driftbin/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Support  SupportConfig
	Bins     BinConfig
	Model    ModelConfig
	Batch    BatchConfig
	Paths    PathConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// SupportConfig holds the fixed integer support bounds of the histograms
type SupportConfig struct {
	MinEdge int
	MaxEdge int
}

// BinConfig holds the cardinality bounds of the edge selection program
type BinConfig struct {
	MinBins int
	MaxBins int
}

// ModelConfig holds the objective and classification parameters
type ModelConfig struct {
	Epsilon    float64   // PSI smoothing constant
	Alphas     []float64 // objective trade-off weights, one solve per value
	Beta       float64   // F-beta exponent
	Thresholds []float64 // classifier cutoff sweep; empty derives candidates from training quantiles
}

// BatchConfig holds worker pool and solve budget settings
type BatchConfig struct {
	Workers      int
	SolveTimeout time.Duration // zero disables the per-solve budget
}

// PathConfig holds file system paths
type PathConfig struct {
	TrainFile   string
	TestDir     string
	ResultsFile string
}

// ServerConfig holds the results API settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional Postgres result sink settings
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Support: SupportConfig{
			MinEdge: getEnvIntOrDefault("MIN_EDGE", 300),
			MaxEdge: getEnvIntOrDefault("MAX_EDGE", 850),
		},
		Bins: BinConfig{
			MinBins: getEnvIntOrDefault("MIN_NUM_BINS", 5),
			MaxBins: getEnvIntOrDefault("MAX_NUM_BINS", 25),
		},
		Model: ModelConfig{
			Epsilon:    getEnvFloatOrDefault("EPSILON", 1e-8),
			Alphas:     getEnvFloatsOrDefault("ALPHAS", []float64{0.5}),
			Beta:       getEnvFloatOrDefault("BETA", 2.0),
			Thresholds: getEnvFloatsOrDefault("THRESHOLDS", []float64{0.1}),
		},
		Batch: BatchConfig{
			Workers:      getEnvIntOrDefault("WORKERS", 4),
			SolveTimeout: getEnvDurationOrDefault("SOLVE_TIMEOUT", 0),
		},
		Paths: PathConfig{
			TrainFile:   getEnvOrDefault("TRAIN_FILE", ""),
			TestDir:     getEnvOrDefault("TEST_DIR", ""),
			ResultsFile: getEnvOrDefault("RESULTS_FILE", "results.xlsx"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Support.MaxEdge <= cfg.Support.MinEdge {
		return errors.ConfigInvalid("MAX_EDGE must be greater than MIN_EDGE")
	}
	if cfg.Bins.MinBins < 1 || cfg.Bins.MaxBins < cfg.Bins.MinBins {
		return errors.ConfigInvalid("bin bounds must satisfy 1 <= MIN_NUM_BINS <= MAX_NUM_BINS")
	}
	if cfg.Model.Epsilon <= 0 {
		return errors.ConfigInvalid("EPSILON must be positive")
	}
	for _, alpha := range cfg.Model.Alphas {
		if alpha < 0 || alpha > 1 {
			return errors.ConfigInvalid("every alpha must lie in [0,1]")
		}
	}
	if cfg.Model.Beta <= 0 {
		return errors.ConfigInvalid("BETA must be positive")
	}
	if cfg.Batch.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvFloatsOrDefault parses a comma-separated list of floats
func getEnvFloatsOrDefault(key string, defaultValue []float64) []float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []float64
	for _, part := range strings.Split(value, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return defaultValue
		}
		out = append(out, f)
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
