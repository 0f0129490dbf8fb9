// Package config provides configuration management for the application.
// Values come from an optional YAML file overlaid by environment variables;
// environment always wins. A .env file in the working directory is loaded
// first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dsbridge/internal/core"
)

// Defaults for the DeepSeek client.
const (
	DefaultBaseURL   = "https://api.deepseek.com"
	DefaultTimeoutMS = 120000
	DefaultModel     = "deepseek-chat"
)

// Config holds the application configuration.
type Config struct {
	DeepSeek DeepSeekConfig `yaml:"deepseek"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DeepSeekConfig holds the upstream API client configuration.
type DeepSeekConfig struct {
	APIKey                 string `yaml:"api_key"`
	BaseURL                string `yaml:"base_url"`
	TimeoutMS              int    `yaml:"timeout_ms"`
	DefaultModel           string `yaml:"default_model"`
	FallbackModel          string `yaml:"fallback_model"`
	EnableReasonerFallback bool   `yaml:"enable_reasoner_fallback"`
}

// Timeout returns the per-attempt request timeout as a duration.
func (c DeepSeekConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ServerConfig holds the host-facing HTTP server configuration.
type ServerConfig struct {
	Port      string `yaml:"port"`
	MasterKey string `yaml:"master_key"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Load reads configuration from the optional YAML file at path (skipped when
// path is empty or the file does not exist) and the environment, then
// validates it. A missing or empty DEEPSEEK_API_KEY is a fatal
// configuration error.
func Load(path string) (*Config, error) {
	// Load .env into the process environment (optional, won't fail if absent).
	_ = godotenv.Load()

	cfg := &Config{
		DeepSeek: DeepSeekConfig{
			BaseURL:                DefaultBaseURL,
			TimeoutMS:              DefaultTimeoutMS,
			DefaultModel:           DefaultModel,
			FallbackModel:          DefaultModel,
			EnableReasonerFallback: true,
		},
		Server: ServerConfig{
			Port: "3001",
		},
		Metrics: MetricsConfig{
			Endpoint: "/metrics",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if strings.TrimSpace(cfg.DeepSeek.APIKey) == "" {
		return nil, core.NewConfigurationError("DEEPSEEK_API_KEY is required")
	}
	cfg.DeepSeek.APIKey = strings.TrimSpace(cfg.DeepSeek.APIKey)
	if cfg.DeepSeek.TimeoutMS <= 0 {
		cfg.DeepSeek.TimeoutMS = DefaultTimeoutMS
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func applyEnv(cfg *Config) {
	cfg.DeepSeek.APIKey = envString("DEEPSEEK_API_KEY", cfg.DeepSeek.APIKey)
	cfg.DeepSeek.BaseURL = envString("DEEPSEEK_BASE_URL", cfg.DeepSeek.BaseURL)
	cfg.DeepSeek.TimeoutMS = envInt("DEEPSEEK_REQUEST_TIMEOUT_MS", cfg.DeepSeek.TimeoutMS)
	cfg.DeepSeek.DefaultModel = envString("DEEPSEEK_DEFAULT_MODEL", cfg.DeepSeek.DefaultModel)
	cfg.DeepSeek.FallbackModel = envString("DEEPSEEK_FALLBACK_MODEL", cfg.DeepSeek.FallbackModel)
	cfg.DeepSeek.EnableReasonerFallback = envBool("DEEPSEEK_ENABLE_REASONER_FALLBACK", cfg.DeepSeek.EnableReasonerFallback)

	cfg.Server.Port = envString("DSBRIDGE_PORT", cfg.Server.Port)
	cfg.Server.MasterKey = envString("DSBRIDGE_MASTER_KEY", cfg.Server.MasterKey)

	cfg.Metrics.Enabled = envBool("DSBRIDGE_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Endpoint = envString("DSBRIDGE_METRICS_ENDPOINT", cfg.Metrics.Endpoint)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer from the environment; unset or unparsable values
// keep the fallback.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envBool reads a boolean from the environment. Truthy values are
// 1, true, yes and on (case-insensitive); anything else is false.
func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
