package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	providerGemini    = "gemini"
	providerAnthropic = "anthropic"
)

var defaultModels = map[string]string{
	providerGemini:    "gemini-2.5-pro",
	providerAnthropic: "claude-sonnet-4-5",
}

// Config is the process configuration read from the environment.
type Config struct {
	Port              string
	Provider          string
	APIKey            string
	Model             string
	GenerationTimeout time.Duration
	AllowedOrigin     string
	DBUrl             string
	RabbitMQUrl       string
	R2                *R2Config
	Workers           int
	LogLevel          string
}

func getenvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads .env when present and then the environment. Database,
// broker and R2 settings are optional; the LLM key is not.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getenvDefault("BACKEND_PORT", "3001"),
		Provider:      strings.ToLower(getenvDefault("LLM_PROVIDER", providerGemini)),
		AllowedOrigin: getenvDefault("CORS_ORIGIN", "*"),
		DBUrl:         os.Getenv("DB_URL"),
		RabbitMQUrl:   os.Getenv("RABBITMQ_URL"),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),
	}

	switch cfg.Provider {
	case providerGemini:
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
		if cfg.APIKey == "" {
			return Config{}, fmt.Errorf("empty GOOGLE_API_KEY in environment")
		}
	case providerAnthropic:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.APIKey == "" {
			return Config{}, fmt.Errorf("empty ANTHROPIC_API_KEY in environment")
		}
	default:
		return Config{}, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
	cfg.Model = getenvDefault("LLM_MODEL", defaultModels[cfg.Provider])

	timeout, err := time.ParseDuration(getenvDefault("GENERATION_TIMEOUT", "2m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid GENERATION_TIMEOUT: %w", err)
	}
	cfg.GenerationTimeout = timeout

	workers, err := strconv.Atoi(getenvDefault("WORKERS", "3"))
	if err != nil || workers < 1 {
		return Config{}, fmt.Errorf("invalid WORKERS %q", os.Getenv("WORKERS"))
	}
	cfg.Workers = workers

	r2, err := loadR2Config()
	if err != nil {
		return Config{}, err
	}
	cfg.R2 = r2
	return cfg, nil
}

// loadR2Config returns nil when no R2 variable is set and an error when only
// some of them are.
func loadR2Config() (*R2Config, error) {
	vars := []string{"R2_ACCCOUNT_ID", "R2_BUCKET", "R2_ACCESS_KEY", "R2_SECRET_KEY"}
	values := map[string]string{}
	for _, k := range vars {
		if v := os.Getenv(k); v != "" {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return nil, nil
	}
	for _, k := range vars {
		if values[k] == "" {
			return nil, fmt.Errorf("empty %s in environment", k)
		}
	}
	return &R2Config{
		AccountID: values["R2_ACCCOUNT_ID"],
		Bucket:    values["R2_BUCKET"],
		AccessKey: values["R2_ACCESS_KEY"],
		SecretKey: values["R2_SECRET_KEY"],
	}, nil
}

func newLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}
