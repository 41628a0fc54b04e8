// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./config.yaml)
//  3. Default values
//
// The loaded Config is immutable: it is constructed once at process start,
// validated fail-fast, and passed by dependency injection into every
// component that needs it. There is no hidden process-wide global.
//
// Security: sensitive fields (API keys, encryption key, database URL) are
// masked in MarshalJSON and String.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrMissingDatabaseURL indicates DATABASE_URL is not set.
	ErrMissingDatabaseURL = errors.New("missing database URL")

	// ErrMissingEncryptionKey indicates the API key encryption key is not set.
	ErrMissingEncryptionKey = errors.New("missing encryption key")

	// ErrInvalidEncryptionKey indicates the encryption key is malformed.
	ErrInvalidEncryptionKey = errors.New("invalid encryption key")

	// ErrInvalidAddr indicates the HTTP listen address is malformed.
	ErrInvalidAddr = errors.New("invalid listen address")
)

const (
	// SupportedProvider is the only model provider family this backend
	// talks to. Tenant configurations naming any other provider are
	// rejected by the credential resolver.
	SupportedProvider = "google"

	// DefaultChatModel is the baseline Gemini model used when a tenant has
	// no configuration or an empty model field.
	DefaultChatModel = "gemini-1.5-flash"

	// EmbeddingModel generates the vectors stored in the documents table.
	// Output dimensionality is truncated to 768 to match the pgvector
	// schema; see knowledge.VectorDimension.
	EmbeddingModel = "text-embedding-004"
)

// Environment variables recognized for the process-wide Gemini API key
// fallback. The first non-empty one wins.
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON.
type Config struct {
	// DatabaseURL is the PostgreSQL connection URL. Required.
	DatabaseURL string `mapstructure:"database_url" json:"database_url"` // SENSITIVE: masked in MarshalJSON

	// GeminiAPIKey is the process-wide fallback API key used when a tenant
	// has no stored configuration. Read from GEMINI_API_KEY or
	// GOOGLE_API_KEY, first non-empty wins. Optional: without it, tenants
	// must configure their own key.
	GeminiAPIKey string `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON

	// DefaultModel is the chat model used when a tenant configuration is
	// absent or has an empty model field.
	DefaultModel string `mapstructure:"default_model" json:"default_model"`

	// EncryptionKey is a 64-char hex string (32 bytes) keying the AES-GCM
	// cipher that protects stored tenant API keys. Required.
	EncryptionKey string `mapstructure:"encryption_key" json:"encryption_key"` // SENSITIVE: masked in MarshalJSON

	// Addr is the HTTP listen address.
	Addr string `mapstructure:"addr" json:"addr"`

	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
}

// Load loads configuration and validates it fail-fast.
// Priority: environment variables > config file > defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// GEMINI_API_KEY wins over GOOGLE_API_KEY; viper's BindEnv covers only
	// the primary name, so resolve the alternates explicitly.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = LookupAPIKeyEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// LookupAPIKeyEnv returns the process-wide Gemini API key from the
// recognized environment variables, first non-empty wins. Empty string
// when none is set.
func LookupAPIKeyEnv() string {
	for _, name := range apiKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8000")
	v.SetDefault("default_model", DefaultChatModel)
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
}

// bindEnvVariables binds environment variables explicitly. Only secrets and
// deployment-level settings come from the environment.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("database_url", "DATABASE_URL")
	mustBind("encryption_key", "SUPPORTBOT_ENCRYPTION_KEY")
	mustBind("default_model", "SUPPORTBOT_DEFAULT_MODEL")
	mustBind("addr", "SUPPORTBOT_ADDR")
	mustBind("cors_origins", "SUPPORTBOT_CORS_ORIGINS")
	mustBind("gemini_api_key", "GEMINI_API_KEY")
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Short secrets are fully
// masked; longer ones show the first and last two characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.DatabaseURL = maskSecret(a.DatabaseURL)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	a.EncryptionKey = maskSecret(a.EncryptionKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
