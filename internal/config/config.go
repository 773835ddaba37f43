// Package config loads the application configuration from command
// line flags overlaid by environment variables (with optional .env
// file support) and validates the result.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings of the application.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	BaseURL             string        `env:"BASE_URL" validate:"url"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"omitempty,filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" validate:"required"`
	SessionSigningKey   string        `env:"SESSION_SIGNING_KEY" validate:"required,base64url"`
	SessionTTL          time.Duration `env:"SESSION_TTL"`
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips flag.Parse, for use from tests where
// the test binary owns the flag set.
func WithDisableFlagsParsing(disable bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disable
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func validate(cfg *Config) error {
	v := validator.New()

	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	if err := v.RegisterValidation("filepath", validateFilePath); err != nil {
		return err
	}

	return v.Struct(cfg)
}

// New assembles the configuration: defaults, then flags, then
// environment variables, then validation.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{
		RunAddr:             ":8080",
		BaseURL:             "http://localhost:8080",
		LogLevel:            "info",
		DBConnectionTimeout: 10 * time.Second,
		MigrationsDir:       "cmd/tinyapp/migrations",
		SessionCookieName:   "tinyapp_session",
		SessionSigningKey:   "c3VwZXJzZWNyZXRzaWduaW5na2V5", // override in production
		SessionTTL:          24 * time.Hour,
	}

	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "base address of the resulting shortened URL")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.DBFileName, "f", cfg.DBFileName, "JSON file name with database")
		flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "a string with the database connection details")
		flag.Parse()
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
