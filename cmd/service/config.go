package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	SecretKey     string        `env:"SECRET_KEY,required"`
	JWTSecret     string        `env:"JWT_SECRET,required"`
	Port          int           `env:"PORT" envDefault:"8080"`
	DefaultExpiry time.Duration `env:"DEFAULT_EXPIRY" envDefault:"20m"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RateLimit     int           `env:"RATE_LIMIT" envDefault:"30"`
	RateWindow    time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"json"`
}

func loadConfig() (config, error) {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
