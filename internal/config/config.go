package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"issue-history/internal/feed"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Feed                feed.Config
	DataPath            string
	LogDir              string
	EnableMermaidCharts bool

	// Fetch Settings
	Concurrency int
	PageSize    int
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return fromEnv(exeDir), nil
}

func fromEnv(exeDir string) *AppConfig {
	dataPath := exeDir
	if dataPath == "" {
		dataPath = "."
	}
	dataPath = getEnv("DATA_PATH", dataPath)
	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))

	return &AppConfig{
		Feed: feed.Config{
			BaseURL:      getEnv("FEED_URL", feed.DefaultBaseURL),
			Token:        getEnv("FEED_TOKEN", ""),
			RequestDelay: getEnvDuration("FEED_REQUEST_DELAY_MS", 0, time.Millisecond),
			Timeout:      getEnvDuration("FEED_TIMEOUT_SECONDS", 90, time.Second),
			MaxRetries:   getEnvInt("FEED_MAX_RETRIES", 3),
			CacheTTL:     getEnvDuration("FEED_CACHE_TTL_SECONDS", 300, time.Second),
		},
		DataPath:            dataPath,
		LogDir:              logDir,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		Concurrency:         getEnvInt("FETCH_CONCURRENCY", feed.DefaultConcurrency),
		PageSize:            getEnvInt("FETCH_PAGE_SIZE", feed.DefaultPageSize),
	}
}

// getEnv treats an empty variable as unset.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}

// getEnvDuration reads an integer count of unit.
func getEnvDuration(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * unit
}
