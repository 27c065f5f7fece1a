package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"        validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"      validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth"          validate:"required"`
	LLM          LLMConfig          `mapstructure:"llm"`
	ContentStore ContentStoreConfig `mapstructure:"content_store" validate:"required"`
	Task         TaskConfig         `mapstructure:"task"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings for the admin surface.
// The API is operator-only: a single account whose bcrypt password hash
// is supplied through configuration rather than a user table.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
	OperatorEmail        string `mapstructure:"operator_email"         validate:"required,email"`
	OperatorPasswordHash string `mapstructure:"operator_password_hash" validate:"required"`
}

// LLMConfig contains Gemini integration settings. The API key list here is
// only a bootstrap fallback: it seeds the per-kind job settings row when the
// row is lazily created. Running jobs resolve credentials from their own
// override first, then from the stored settings.
type LLMConfig struct {
	APIKeys               []string `mapstructure:"api_keys"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"gte=0"`
}

// ContentStoreConfig contains connection settings for the external document
// store that holds chapter body text.
type ContentStoreConfig struct {
	BaseURL        string `mapstructure:"base_url"        validate:"required,url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// TaskConfig contains settings for the background job runner.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=0"`
}
