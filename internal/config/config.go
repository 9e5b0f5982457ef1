package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server runtime settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `mapstructure:"addr" yaml:"addr"`

	// DBPath is the path to the SQLite database file.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// StaticDir is the directory with the built frontend; empty disables it.
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`

	// JWTSecret signs identity tokens for the whole process.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`

	// TokenValidity is how long issued tokens remain valid.
	TokenValidity time.Duration `mapstructure:"token_validity" yaml:"token_validity"`
}

func defaultConfig() *Config {
	return &Config{
		Addr:          ":8080",
		DBPath:        "data/taskflow.db",
		StaticDir:     "web/dist",
		JWTSecret:     "",
		TokenValidity: 30 * 24 * time.Hour,
	}
}

// Load reads configuration from an optional YAML file at path, with
// TASKFLOW_* environment variables taking precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "data/taskflow.db")
	v.SetDefault("static_dir", "web/dist")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_validity", 30*24*time.Hour)

	v.SetEnvPrefix("TASKFLOW")
	v.AutomaticEnv()
	for _, key := range []string{"addr", "db_path", "static_dir", "jwt_secret", "token_validity"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	// A missing config file is fine: defaults plus env cover everything.
	if path != "" {
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required (set TASKFLOW_JWT_SECRET or jwt_secret in %s)", path)
	}
	if cfg.TokenValidity <= 0 {
		return nil, fmt.Errorf("token_validity must be positive")
	}

	return cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}
