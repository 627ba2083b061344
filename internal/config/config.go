package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // outlet time zones must resolve on minimal images

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

// Config holds the brewdesk API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Cache      CacheConfig      `yaml:"cache"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Products   ProductsConfig   `yaml:"products"`
	Outlets    OutletsConfig    `yaml:"outlets"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds the optional query-embedding cache connection.
// The cache is disabled when Addrs is empty.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// EmbeddingConfig holds the query embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // label used in metrics
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// GenerationConfig holds the answer generation provider settings.
type GenerationConfig struct {
	Provider     string  `yaml:"provider"` // openai, gemini, none
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	DisableRetry bool    `yaml:"disable_retry"`
	SystemPrompt string  `yaml:"system_prompt"`
}

// Timeout returns the per-attempt generation timeout.
func (c GenerationConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

// ProductsConfig locates the prebuilt product corpus.
type ProductsConfig struct {
	Source   string  `yaml:"source"` // json, bolt
	Path     string  `yaml:"path"`
	MinScore float64 `yaml:"min_score"`
}

// OutletsConfig selects the outlet data store.
type OutletsConfig struct {
	Driver             string `yaml:"driver"` // memory, sqlite, postgres
	DSN                string `yaml:"dsn"`
	SeedFile           string `yaml:"seed_file"`
	SchemaVersion      string `yaml:"schema_version"`
	Timezone           string `yaml:"timezone"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
}

// PipelineConfig tunes the answer pipeline.
type PipelineConfig struct {
	BranchTimeoutMs int `yaml:"branch_timeout_ms"`
	ContextBudget   int `yaml:"context_budget"` // prompt size cap in characters
	EvidenceK       int `yaml:"evidence_k"`
	MaxRecentTurns  int `yaml:"max_recent_turns"`
}

// BranchTimeout returns the per-branch retrieval timeout.
func (c PipelineConfig) BranchTimeout() time.Duration {
	return time.Duration(c.BranchTimeoutMs) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding env variables, applying defaults and validating.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = "valkey"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 7 * 24 * 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	vec := domain.DefaultVectorConfig()
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}

	if c.Generation.Provider == "" {
		c.Generation.Provider = "openai"
	}
	if c.Generation.Model == "" {
		switch c.Generation.Provider {
		case "openai":
			c.Generation.Model = "gpt-4o-mini"
		case "gemini":
			c.Generation.Model = "gemini-2.0-flash"
		}
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 512
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 20
	}

	if c.Products.Source == "" {
		c.Products.Source = "json"
	}

	if c.Outlets.Driver == "" {
		c.Outlets.Driver = "sqlite"
	}
	if c.Outlets.SchemaVersion == "" {
		c.Outlets.SchemaVersion = query.SchemaVersion
	}
	if c.Outlets.Timezone == "" {
		c.Outlets.Timezone = "Asia/Kuala_Lumpur"
	}
	if c.Outlets.MaxOpenConns <= 0 {
		c.Outlets.MaxOpenConns = 10
	}
	if c.Outlets.MaxIdleConns <= 0 {
		c.Outlets.MaxIdleConns = 2
	}
	if c.Outlets.ConnMaxLifetimeSec <= 0 {
		c.Outlets.ConnMaxLifetimeSec = 1800
	}

	if c.Pipeline.BranchTimeoutMs <= 0 {
		c.Pipeline.BranchTimeoutMs = 5000
	}
	if c.Pipeline.ContextBudget <= 0 {
		c.Pipeline.ContextBudget = 6000
	}
	if c.Pipeline.EvidenceK <= 0 {
		c.Pipeline.EvidenceK = 4
	}
	if c.Pipeline.MaxRecentTurns <= 0 {
		c.Pipeline.MaxRecentTurns = 6
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Cache.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("cache.driver must be \"valkey\" or \"redis\", got %q", c.Cache.Driver)
	}

	if c.Embedding.APIKey == "" {
		return errors.New("embedding.api_key is required")
	}

	switch c.Generation.Provider {
	case "none":
	case "openai", "gemini":
		if c.Generation.APIKey == "" {
			return fmt.Errorf("generation.api_key is required for provider %q", c.Generation.Provider)
		}
		if c.Generation.Model == "" {
			return errors.New("generation.model is required")
		}
	default:
		return fmt.Errorf("generation.provider must be \"openai\", \"gemini\" or \"none\", got %q",
			c.Generation.Provider)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be between 0 and 2, got %g", c.Generation.Temperature)
	}

	switch c.Products.Source {
	case "json", "bolt":
	default:
		return fmt.Errorf("products.source must be \"json\" or \"bolt\", got %q", c.Products.Source)
	}
	if c.Products.Path == "" {
		return errors.New("products.path is required")
	}
	if c.Products.MinScore < -1 || c.Products.MinScore > 1 {
		return fmt.Errorf("products.min_score must be between -1 and 1, got %g", c.Products.MinScore)
	}

	switch c.Outlets.Driver {
	case "memory":
		if c.Outlets.SeedFile == "" {
			return errors.New("outlets.seed_file is required for the memory driver")
		}
	case "sqlite", "postgres":
		if c.Outlets.DSN == "" {
			return fmt.Errorf("outlets.dsn is required for the %s driver", c.Outlets.Driver)
		}
	default:
		return fmt.Errorf("outlets.driver must be \"memory\", \"sqlite\" or \"postgres\", got %q", c.Outlets.Driver)
	}
	if _, err := time.LoadLocation(c.Outlets.Timezone); err != nil {
		return fmt.Errorf("outlets.timezone %q: %w", c.Outlets.Timezone, err)
	}

	if c.Pipeline.ContextBudget < 200 {
		return fmt.Errorf("pipeline.context_budget must be at least 200 characters, got %d", c.Pipeline.ContextBudget)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
