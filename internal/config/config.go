package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains all settings for the generative AI provider.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required"`
	TextModelName     string `mapstructure:"text_model_name" validate:"required"`
	ImageModelName    string `mapstructure:"image_model_name" validate:"required"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// GenerationConfig contains the worker counts and output parameters for
// the background generation tasks. Max values cap what a client may
// request through the API.
type GenerationConfig struct {
	DescriptionWorkers    int    `mapstructure:"description_workers" validate:"required,gt=0"`
	MaxDescriptionWorkers int    `mapstructure:"max_description_workers" validate:"required,gtefield=DescriptionWorkers"`
	ImageWorkers          int    `mapstructure:"image_workers" validate:"required,gt=0"`
	MaxImageWorkers       int    `mapstructure:"max_image_workers" validate:"required,gtefield=ImageWorkers"`
	DefaultAspectRatio    string `mapstructure:"default_aspect_ratio" validate:"required"`
	DefaultResolution     string `mapstructure:"default_resolution" validate:"required"`
}

// StorageConfig contains file storage settings.
type StorageConfig struct {
	UploadRoot string `mapstructure:"upload_root" validate:"required"`
}
