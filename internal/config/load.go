package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// SLIDESMITH_ prefix with underscores for nesting, e.g.
// SLIDESMITH_SERVER_PORT or SLIDESMITH_LLM_GEMINI_API_KEY, and take
// precedence over file values. Returns a validated Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults suffice.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SLIDESMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults for everything that has a sensible one.
// Secrets (API key, database URL) deliberately have none.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("llm.text_model_name", "gemini-2.0-flash")
	v.SetDefault("llm.image_model_name", "gemini-2.0-flash-exp-image-generation")
	v.SetDefault("llm.request_timeout_seconds", 120)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("generation.description_workers", 5)
	v.SetDefault("generation.max_description_workers", 10)
	v.SetDefault("generation.image_workers", 8)
	v.SetDefault("generation.max_image_workers", 16)
	v.SetDefault("generation.default_aspect_ratio", "16:9")
	v.SetDefault("generation.default_resolution", "2K")

	v.SetDefault("storage.upload_root", "uploads")
}
