package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PARAMSTORE_DATABASE_URL.
const EnvPrefix = "PARAMSTORE"

// ConfigEnvVar names an explicit config file path.
const ConfigEnvVar = EnvPrefix + "_CONFIG"

// Load reads configuration from $PARAMSTORE_CONFIG, or an optional
// paramstore.yaml in the working directory, then applies PARAMSTORE_*
// environment overrides and validates the result.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigEnvVar))
}

// LoadFile is Load with an explicit config file. An empty path falls back to
// the optional paramstore.yaml lookup; a non-empty path must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("paramstore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Parameter.Validators == nil {
		cfg.Parameter.Validators = map[string]string{}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file:paramstore.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("parameter.encryption_key", "")
	v.SetDefault("parameter.encryption_key_backup_file", "dap_backup_key.json")
}
