package config

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Parameter ParameterConfig `mapstructure:"parameter" validate:"required"`
}

// ServerConfig contains the HTTP server and logging settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the SQL driver and connection string.
// Driver "pgx" expects a Postgres URL; "sqlite" expects a file name or file: URI.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=pgx sqlite"`
	URL    string `mapstructure:"url" validate:"required"`
}

// AuthConfig configures the admin API tokens. JWTSecret may be empty for
// commands that never serve HTTP.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// ParameterConfig configures the parameter store itself.
type ParameterConfig struct {
	// Validators maps a custom validator name to its dotted registration path.
	// Keys are lowercased by the config loader.
	Validators map[string]string `mapstructure:"validators" validate:"dive,required"`

	// EncryptionKey is the base64url key used for parameters with encryption enabled.
	EncryptionKey string `mapstructure:"encryption_key"`

	// EncryptionKeyBackupFile receives the outgoing key during rotation.
	EncryptionKeyBackupFile string `mapstructure:"encryption_key_backup_file" validate:"required"`
}
