// Package config provides configuration management for grouped-table
// operations. Settings come from defaults, an optional YAML or JSON file,
// and GROUPFRAME_* environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for grouped-table operations.
type Config struct {
	// ParallelThreshold is the minimum row count before the group index
	// build fans out to the worker pool. Zero disables parallel builds.
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold"`
	// WorkerPoolSize is the number of worker goroutines (0 = NumCPU).
	WorkerPoolSize int `json:"worker_pool_size" yaml:"worker_pool_size"`
	// LabelSeparator joins key-tuple values into group labels.
	LabelSeparator string `json:"label_separator" yaml:"label_separator"`
	// ProgressEnabled turns on progress reporting during per-group evaluation.
	ProgressEnabled bool `json:"progress_enabled" yaml:"progress_enabled"`
	// VerboseLogging enables debug-level log output.
	VerboseLogging bool `json:"verbose_logging" yaml:"verbose_logging"`
}

// Default configuration values.
const (
	DefaultParallelThreshold = 10000
	DefaultLabelSeparator    = "|"
)

var (
	globalConfig Config
	configMutex  sync.RWMutex
)

func init() {
	globalConfig = DefaultConfig()
	loadFromEnv(&globalConfig)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // auto-detect
		LabelSeparator:    DefaultLabelSeparator,
	}
}

// GetConfig returns a copy of the current global configuration.
func GetConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the global configuration.
func SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
	return nil
}

// ResetConfig restores defaults plus environment overrides.
func ResetConfig() {
	cfg := DefaultConfig()
	loadFromEnv(&cfg)
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("parallel_threshold must be non-negative, got %d", c.ParallelThreshold)
	}
	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("worker_pool_size must be non-negative, got %d", c.WorkerPoolSize)
	}
	if c.WorkerPoolSize > runtime.NumCPU()*4 {
		return fmt.Errorf("worker_pool_size %d exceeds 4x CPU count", c.WorkerPoolSize)
	}
	if c.LabelSeparator == "" {
		return fmt.Errorf("label_separator must not be empty")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file, applies
// environment overrides, and installs it globally.
func LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension: %s", ext)
	}

	loadFromEnv(&cfg)
	return SetConfig(cfg)
}

// loadFromEnv applies GROUPFRAME_* environment variable overrides.
func loadFromEnv(cfg *Config) {
	if v, ok := envInt("GROUPFRAME_PARALLEL_THRESHOLD"); ok {
		cfg.ParallelThreshold = v
	}
	if v, ok := envInt("GROUPFRAME_WORKER_POOL_SIZE"); ok {
		cfg.WorkerPoolSize = v
	}
	if v := os.Getenv("GROUPFRAME_LABEL_SEPARATOR"); v != "" {
		cfg.LabelSeparator = v
	}
	if v, ok := envBool("GROUPFRAME_PROGRESS"); ok {
		cfg.ProgressEnabled = v
	}
	if v, ok := envBool("GROUPFRAME_VERBOSE"); ok {
		cfg.VerboseLogging = v
	}
}

func envInt(name string) (int, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(name string) (bool, bool) {
	s := os.Getenv(name)
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}
