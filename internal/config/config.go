package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	// Asset storage
	FilesDir string // Root directory of the local object store
	// Logging
	LogDir      string // Empty disables the log file
	LogMaxFiles int
	// Batch reprocessing
	ReprocessBatchSize int
	// Startup
	RunMigrations bool
	// Auth (dev only) - skips JWT verification and uses DevUserID
	AuthDisabled bool
	DevUserID    string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWKSURL:            getEnv("JWKS_URL", ""),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		FilesDir:           getEnv("FILES_DIR", "./data/files"),
		LogDir:             getEnv("LOG_DIR", ""),
		LogMaxFiles:        getEnvInt("LOG_MAX_FILES", 10),
		ReprocessBatchSize: getEnvInt("REPROCESS_BATCH_SIZE", DefaultReprocessBatchSize),
		RunMigrations:      getEnv("RUN_MIGRATIONS", "false") == "true",
		// Auth bypass is never honoured in prod
		AuthDisabled: env != "prod" && getEnv("AUTH_DISABLED", "false") == "true",
		DevUserID:    getEnv("DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),
		Debug:        getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
