package main

import "time"

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
	limiterMemory   = "memory"
	limiterRedis    = "redis"
)

type appConfig struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	Name           string        `env:"APP_NAME" envDefault:"mfagate"`
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	LimiterStore   string        `env:"RATE_LIMIT_STORE" envDefault:"redis"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	RegisterMax    int           `env:"REGISTER_MAX_ATTEMPTS" envDefault:"10"`
	RegisterWindow time.Duration `env:"REGISTER_WINDOW" envDefault:"1h"`
}
