package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port    string
		GinMode string
	}

	Upload struct {
		Dir         string
		MaxFileSize int64
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	Auth struct {
		JWTSecret   string
		JWTTTLHours int64
	}

	Ranking struct {
		DefaultSubmissionsPerReviewer int
		DefaultAlpha                  float64
		DefaultIterations             int
		DefaultLastComparParam        int
		AnnealingSingle               float64
		AnnealingBatch                float64
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "rankengine")
	config.DB.Password = getEnv("DB_PASSWORD", "rankengine_password")
	config.DB.Name = getEnv("DB_NAME", "rankengine_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")

	config.Upload.Dir = getEnv("UPLOADS_DIR", "./uploads")
	config.Upload.MaxFileSize = getEnvAsInt64("MAX_FILE_SIZE", 10485760)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "dev-secret-change-me")
	config.Auth.JWTTTLHours = getEnvAsInt64("JWT_TTL_HOURS", 24)

	config.Ranking.DefaultSubmissionsPerReviewer = int(getEnvAsInt64("RANKING_DEFAULT_SUBMISSIONS_PER_REVIEWER", 5))
	config.Ranking.DefaultAlpha = getEnvAsFloat64("RANKING_DEFAULT_ALPHA", 0.5)
	config.Ranking.DefaultIterations = int(getEnvAsInt64("RANKING_DEFAULT_ITERATIONS", 4))
	config.Ranking.DefaultLastComparParam = int(getEnvAsInt64("RANKING_DEFAULT_LAST_COMPAR_PARAM", 3))
	config.Ranking.AnnealingSingle = getEnvAsFloat64("RANKING_ANNEALING_SINGLE", 0.6)
	config.Ranking.AnnealingBatch = getEnvAsFloat64("RANKING_ANNEALING_BATCH", 0.5)

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat64 gets an environment variable as float64 or returns a default value
func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
