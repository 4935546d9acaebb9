package core

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Options is the environment-facing configuration.
type Options struct {
	SecretKey string `env:"SECRET_KEY"`
}

// LoadOptions reads .env (if present) and the process environment.
func LoadOptions() (Options, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, errors.Join(ErrConfiguration, err)
	}
	return opts, nil
}

// Config converts options into a Config with default clock, randomness
// and logger.
func (o Options) Config() Config {
	return Config{Secret: o.SecretKey}
}

// Config is shared by Generator and Decoder. It is read-only after
// construction and safe for concurrent use.
type Config struct {
	Secret string
	Now    func() time.Time
	Rand   io.Reader
	Logger *slog.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Secret == "" {
		c.Logger.Error("SECRET_KEY missing or not properly configured in environment variables")
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, ErrMissingSecret)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Rand == nil {
		c.Rand = rand.Reader
	}
	return c, nil
}
