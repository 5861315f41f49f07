package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"asistenciaBot/logger"
)

type Config struct {
	LogLevel  logger.LogLevel `env:"LOG_LEVEL" envDefault:"1"`
	LogDir    string          `env:"LOG_DIR" envDefault:"./logs"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	MaxAPI    MaxConfig       `envPrefix:"MAX_"`
	API       APIConfig       `envPrefix:"API_"`
	Analytics AnalyticsConfig `envPrefix:"ANALYTICS_"`
}

type MaxConfig struct {
	Token string `env:"TOKEN"`
}

type DatabaseConfig struct {
	URI string `env:"URI"`
}

type APIConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8080/api"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type AnalyticsConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:5001"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
