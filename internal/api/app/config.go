package app

import (
	"os"
	"strconv"
	"time"

	"github.com/tunecrate/tunecrate/pkg/jwtx"
)

type Config struct {
	Issuer    string // Issuer claim for tokens (default: tunecrate)
	JWTSecret string // Required: HS256 signing secret

	DatabaseFile string // Path to SQLite database file (default: ./tunecrate.db)
	PepperFile   string // Path to the password-hashing pepper file (default: ./pepper)

	RedisAddr     string // Redis address (default: localhost:6379)
	RedisPassword string // Optional Redis password
	RedisDB       int    // Redis logical database (default: 0)

	AccessTokenTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Refresh token lifetime (default: 744h)
	SessionLimit    int           // Live refresh tokens per user (default: 5)

	RequireVerifiedEmail bool    // Refuse login until the email is verified (default: false)
	MaxTrackMinutes      float64 // Longest downloadable track (default: 16)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:    getEnvOrDefault("API_ISSUER", "tunecrate"),
		JWTSecret: os.Getenv("API_JWT_SECRET"),

		DatabaseFile: getEnvOrDefault("API_DATABASE_FILE", "tunecrate.db"),
		PepperFile:   getEnvOrDefault("API_PEPPER_FILE", "pepper"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		AccessTokenTTL:  getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		SessionLimit:    getEnvIntOrDefault("SESSION_LIMIT", 5),

		RequireVerifiedEmail: getEnvBoolOrDefault("REQUIRE_VERIFIED_EMAIL", false),
		MaxTrackMinutes:      getEnvFloatOrDefault("MAX_TRACK_MINUTES", 16.0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
