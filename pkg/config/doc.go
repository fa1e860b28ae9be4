// Package config loads typed configuration structs from environment
// variables, wrapping github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing.
//
// Each configuration type is parsed once per process and cached by type
// name, so independent components can load the same struct cheaply:
//
//	var cfg notify.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Required variables and defaults come from the struct's env tags:
//
//	type Config struct {
//	    DSN       string        `env:"POSTGRES_DSN,required"`
//	    RetryMax  int           `env:"POSTGRES_RETRY_ATTEMPTS" envDefault:"3"`
//	    Interval  time.Duration `env:"POSTGRES_RETRY_INTERVAL" envDefault:"5s"`
//	}
//
// Tests that mutate the environment between loads should call ResetCache or
// ForceReload to bypass the per-type cache.
package config
