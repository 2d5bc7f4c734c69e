// Package config loads the bot configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken      string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	DataDir            string
	DatabasePath       string
	LogFilePath        string
	Environment        string
	RateLimitPerMinute int
}

// Load reads the environment. An empty OPENAI_API_KEY is allowed: the bot
// runs with the basic-advice fallback and refuses KBJU estimation.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{
		TelegramToken:      os.Getenv("TELEGRAM_TOKEN"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		DataDir:            getEnv("DATA_DIR", "data"),
		DatabasePath:       getEnv("DATABASE_PATH", "data/imeal.db"),
		LogFilePath:        getEnv("LOG_FILE_PATH", "imeal.log"),
		Environment:        getEnv("GO_ENV", "development"),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 5),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
