package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/logger"
)

// Fallback policies accepted in ai.fallback_policy.
const (
	PolicyTransient = "transient"
	PolicyAny       = "any"
)

// Storage drivers accepted in database.driver.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the application's configuration values.
type Config struct {
	Server       ServerConfig    `mapstructure:"server"`
	AI           AIConfig        `mapstructure:"ai"`
	Database     *DBConfig       `mapstructure:"database"`
	Auth         AuthConfig      `mapstructure:"auth"`
	LoggerConfig logger.Config   `mapstructure:"logging"`
	RateLimit    RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy     bool          `mapstructure:"trust_proxy"`
}

// AIConfig configures provider credentials and the fallback pipeline.
type AIConfig struct {
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OllamaHost    string `mapstructure:"ollama_host"`
	OllamaModel   string `mapstructure:"ollama_model"`

	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`

	DefaultModel   string        `mapstructure:"default_model"`
	FallbackOrder  []string      `mapstructure:"fallback_order"`
	FallbackPolicy string        `mapstructure:"fallback_policy"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`

	BreakerEnabled   bool          `mapstructure:"breaker_enabled"`
	BreakerThreshold uint32        `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

// DBConfig configures the review history store.
type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// RateLimitConfig bounds review requests per client address.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// LoadConfig reads configuration from the file named by CONFIG_FILE (or
// ./config.yaml when present) and environment variables, applies defaults
// and validates the result.
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load is LoadConfig with an explicit config file path. An empty path
// searches the working directory for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwt_secret is empty, review history endpoints will reject every token")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.request_timeout", 3*time.Minute)
	v.SetDefault("server.trust_proxy", false)

	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.openai_api_key", "")
	v.SetDefault("ai.openai_base_url", "")
	v.SetDefault("ai.openai_model", "gpt-3.5-turbo")
	v.SetDefault("ai.ollama_host", "")
	v.SetDefault("ai.ollama_model", "llama3")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.default_model", string(core.DefaultModel))
	v.SetDefault("ai.fallback_order", modelStrings(core.DefaultFallbackOrder()))
	v.SetDefault("ai.fallback_policy", PolicyAny)
	v.SetDefault("ai.attempt_timeout", 60*time.Second)
	v.SetDefault("ai.breaker_enabled", true)
	v.SetDefault("ai.breaker_threshold", 5)
	v.SetDefault("ai.breaker_cooldown", 30*time.Second)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "code_reviewer")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("ratelimit.rps", 2.0)
	v.SetDefault("ratelimit.burst", 5)
}

// bindLegacyEnv keeps the variable names the service historically used.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("ai.gemini_api_key", "AI_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_GEMINI_KEY")
	_ = v.BindEnv("ai.openai_api_key", "AI_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
}

// Validate checks that the configuration can drive the review pipeline.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must be set")
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if c.Database == nil {
		return fmt.Errorf("database section is missing")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported database.driver %q (want %q or %q)", c.Database.Driver, DriverPostgres, DriverMemory)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("ratelimit values must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("ratelimit.burst must be at least 1 when ratelimit.rps is set")
	}
	return nil
}

// Validate checks model names, policy and limits of the AI section.
func (c *AIConfig) Validate() error {
	if c.DefaultModel != "" && !core.ModelID(c.DefaultModel).IsKnown() {
		return fmt.Errorf("ai.default_model %q is not a known model", c.DefaultModel)
	}

	seen := make(map[string]struct{}, len(c.FallbackOrder))
	for _, m := range c.FallbackOrder {
		if !core.ModelID(m).IsKnown() {
			return fmt.Errorf("ai.fallback_order contains unknown model %q", m)
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("ai.fallback_order lists %q more than once", m)
		}
		seen[m] = struct{}{}
	}

	switch c.FallbackPolicy {
	case PolicyTransient, PolicyAny:
	default:
		return fmt.Errorf("ai.fallback_policy must be %q or %q, got %q", PolicyTransient, PolicyAny, c.FallbackPolicy)
	}

	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("ai.attempt_timeout must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("ai.max_tokens must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be within [0, 2]")
	}
	return nil
}

// FallbackModels returns the fallback order as model identifiers.
func (c *AIConfig) FallbackModels() []core.ModelID {
	out := make([]core.ModelID, 0, len(c.FallbackOrder))
	for _, m := range c.FallbackOrder {
		out = append(out, core.ModelID(m))
	}
	return out
}

// DSN builds a lib/pq connection string.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

func modelStrings(models []core.ModelID) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = string(m)
	}
	return out
}
