// Package config loads configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - the default .env file is read once, if present
//   - LoadFiles reads additional .env files on request
//   - Load and LoadWithPrefix parse the environment into a struct using tags
//
// Usage:
//
//	type Config struct {
//		BaseURL string `env:"TOGGLE_BASE_URL" envDefault:"http://localhost:8080"`
//		SDKKey  string `env:"TOGGLE_SDK_KEY,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Errors wrap ErrParsingConfig or ErrLoadingEnvFile and can be matched with
// errors.Is.
package config
