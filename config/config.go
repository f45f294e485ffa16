package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Model      ModelConfig
	Heuristics HeuristicsConfig
	USDA       USDAConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ModelConfig holds vision model provider configuration
type ModelConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Preferred      string        `mapstructure:"preferred"`
	Fallbacks      []string      `mapstructure:"fallbacks"`
	Force          bool          `mapstructure:"force"` // disallow silent model substitution
	InvokeTimeout  time.Duration `mapstructure:"invoke_timeout"`
	MaxOutputChars int           `mapstructure:"max_output_chars"` // repair scan bound
}

// HeuristicsConfig holds the empirical confidence thresholds.
// The values are tuned, not derived; change with care.
type HeuristicsConfig struct {
	DefaultConfidence      float64 `mapstructure:"default_confidence"`
	LabelConfidenceFloor   float64 `mapstructure:"label_confidence_floor"`
	ScoreMin               float64 `mapstructure:"score_min"`
	ScoreMax               float64 `mapstructure:"score_max"`
	LowConfidenceThreshold float64 `mapstructure:"low_confidence_threshold"`
	FallbackGoalScore      float64 `mapstructure:"fallback_goal_score"`
	DefaultGoalScore       float64 `mapstructure:"default_goal_score"`
}

// USDAConfig holds nutrition lookup service configuration
type USDAConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	USDA  int `mapstructure:"usda"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/platewise/")

	v.SetEnvPrefix("PLATEWISE")
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Model defaults
	v.SetDefault("model.preferred", "gpt-4o")
	v.SetDefault("model.fallbacks", []string{"gpt-4o-mini", "gpt-4-turbo"})
	v.SetDefault("model.force", false)
	v.SetDefault("model.invoke_timeout", "30s")
	v.SetDefault("model.max_output_chars", 262144)

	// Heuristic defaults
	v.SetDefault("heuristics.default_confidence", 0.5)
	v.SetDefault("heuristics.label_confidence_floor", 0.65)
	v.SetDefault("heuristics.score_min", 3.0)
	v.SetDefault("heuristics.score_max", 8.0)
	v.SetDefault("heuristics.low_confidence_threshold", 0.4)
	v.SetDefault("heuristics.fallback_goal_score", 3.0)
	v.SetDefault("heuristics.default_goal_score", 5.0)

	// USDA defaults
	v.SetDefault("usda.enabled", false)
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")

	// Cache defaults
	v.SetDefault("cache.ttl", "720h") // 30 days

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.usda", 1000)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Model.APIKey == "" {
		return fmt.Errorf("model API key is required (set PLATEWISE_MODEL_API_KEY)")
	}

	if config.Model.Preferred == "" {
		return fmt.Errorf("preferred model id is required")
	}

	if config.Model.InvokeTimeout <= 0 {
		return fmt.Errorf("model invoke timeout must be positive, got: %s", config.Model.InvokeTimeout)
	}

	if config.USDA.Enabled && config.USDA.APIKey == "" {
		return fmt.Errorf("USDA API key is required when nutrition enrichment is enabled")
	}

	h := config.Heuristics
	if h.LabelConfidenceFloor <= 0 || h.LabelConfidenceFloor >= 1 {
		return fmt.Errorf("label confidence floor must be in (0,1), got: %v", h.LabelConfidenceFloor)
	}
	if h.ScoreMin >= h.ScoreMax {
		return fmt.Errorf("score_min must be below score_max, got: %v >= %v", h.ScoreMin, h.ScoreMax)
	}

	return nil
}
