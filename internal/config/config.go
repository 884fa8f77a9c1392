// Package config loads runtime configuration from the environment.
//
// CONFIG STRATEGY:
// Everything is an environment variable, with sensible defaults for local
// development. A `.env` file at the working directory is honoured when
// present (handy for `go run`), but is never required — in containers the
// variables come straight from the environment.
//
// WHY VIPER?
// viper gives us the .env file + environment merge and typed accessors in
// a few lines. Defaults are registered with SetDefault, so a missing
// variable never panics — the zero config is a working dev config.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Config holds every tunable the server needs.
type Config struct {
	Port       int    `mapstructure:"PORT"`
	DBPath     string `mapstructure:"DB_PATH"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	BcryptCost int    `mapstructure:"BCRYPT_COST"`

	// Bootstrap root account, seeded at startup if absent. The defaults
	// match the credentials the integration suite authenticates with.
	RootNome    string `mapstructure:"ROOT_NOME"`
	RootUsuario string `mapstructure:"ROOT_USUARIO"`
	RootSenha   string `mapstructure:"ROOT_SENHA"`
}

// Load reads configuration from the environment (and an optional .env
// file in the working directory) and returns a fully populated Config.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "data/blogpessoal.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("BCRYPT_COST", 0) // 0 = auth package default
	v.SetDefault("ROOT_NOME", "Root")
	v.SetDefault("ROOT_USUARIO", "root@root.com")
	v.SetDefault("ROOT_SENHA", "rootroot")

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional — only a malformed file is an error.
	// With SetConfigFile a missing file surfaces as fs.ErrNotExist rather
	// than viper's ConfigFileNotFoundError, so check for both.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	return &cfg, nil
}
