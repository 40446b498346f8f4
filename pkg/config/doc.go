// Package config loads typed configuration from the process environment.
//
// Configuration structs describe themselves with `env` tags understood by
// github.com/caarlos0/env/v11. Before the first parse the package reads
// `.env` files with github.com/joho/godotenv, so local development works
// without exporting variables by hand.
//
// Each configuration type is parsed once per process and cached; later calls
// for the same type return the cached copy.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
