// Package config loads and validates the connector configuration.
//
// The config file (JSON or YAML) carries exactly two options, apikey and base_url.
// Each can be overridden from the environment as HEALTHIE_APIKEY / HEALTHIE_BASE_URL.
package config

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment overrides.
const EnvPrefix = "HEALTHIE"

// Option keys.
const (
	KeyAPIKey  = "apikey"
	KeyBaseURL = "base_url"
)

// Config is the connector configuration.
type Config struct {
	APIKey  string `json:"apikey" mapstructure:"apikey" validate:"required"`
	BaseURL string `json:"base_url" mapstructure:"base_url" validate:"required,url"`
}

// String hides the API key.
func (c Config) String() string {
	return fmt.Sprintf("{base_url: %s, apikey: %s}", c.BaseURL, redact(c.APIKey))
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// Load reads the config file at path, applies environment overrides and validates
// the result. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{KeyAPIKey, KeyBaseURL} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		for _, key := range v.AllKeys() {
			if !slices.Contains([]string{KeyAPIKey, KeyBaseURL}, key) {
				log.Warn().Str("key", key).Str("path", path).Msg("Ignoring unrecognized config option")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
