package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is read from SHUFFLE_* environment variables, optionally seeded from a .env file.
type Config struct {
	Addr     string        `env:"SHUFFLE_ADDR" envDefault:":8080"`
	DSN      string        `env:"SHUFFLE_DSN" envDefault:"file::memory:?cache=shared"`
	TTL      time.Duration `env:"SHUFFLE_TTL" envDefault:"10m"`
	RedisURL string        `env:"SHUFFLE_REDIS_URL"`
	LogLevel string        `env:"SHUFFLE_LOG_LEVEL" envDefault:"info"`
	Seed     bool          `env:"SHUFFLE_SEED" envDefault:"true"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.LogLevel, validation.By(func(value any) error {
			_, err := logrus.ParseLevel(value.(string))
			return err
		})),
	)
}

// loadConfig reads .env when present, then the process environment.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
