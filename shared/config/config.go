package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	JWTExpireHours string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Session subsystem
	SessionCacheTTLMinutes    string
	SessionCheckTimeoutMillis string

	// Rate Limiting (public validate endpoint)
	RateLimitMaxRequests          string
	RateLimitTimeWindowSeconds    string
	RateLimitBlockDurationMinutes string

	// Super Admin (seed)
	SuperAdminEmail    string
	SuperAdminPassword string

	// Service URLs
	APIGatewayURL     string
	SessionServiceURL string

	// Frontend URL (CORS)
	FrontendURL string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "cubis_academy"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JWTExpireHours: getEnv("JWT_EXPIRE_HOURS", "24"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Session subsystem
		SessionCacheTTLMinutes:    getEnv("SESSION_CACHE_TTL_MINUTES", "30"),
		SessionCheckTimeoutMillis: getEnv("SESSION_CHECK_TIMEOUT_MILLIS", "2000"),

		// Rate Limiting
		RateLimitMaxRequests:          getEnv("RATE_LIMIT_MAX_REQUESTS", "100"),
		RateLimitTimeWindowSeconds:    getEnv("RATE_LIMIT_TIME_WINDOW_SECONDS", "60"),
		RateLimitBlockDurationMinutes: getEnv("RATE_LIMIT_BLOCK_DURATION_MINUTES", "15"),

		// Super Admin
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@cubisacademy.com"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "admin123"),

		// Service URLs
		APIGatewayURL:     getEnv("API_GATEWAY_URL", "http://localhost:8000"),
		SessionServiceURL: getEnv("SESSION_SERVICE_URL", "http://localhost:8001"),

		// Frontend URL
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// GetJWTExpireDuration returns the configured session lifetime
func (c *Config) GetJWTExpireDuration() time.Duration {
	if hours, err := strconv.Atoi(c.JWTExpireHours); err == nil {
		return time.Duration(hours) * time.Hour
	}
	return 24 * time.Hour
}

// GetSessionCacheTTL returns the upper bound TTL for cached session records
func (c *Config) GetSessionCacheTTL() time.Duration {
	if minutes, err := strconv.Atoi(c.SessionCacheTTLMinutes); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return 30 * time.Minute
}

// GetSessionCheckTimeout returns the per-call deadline for security checks
func (c *Config) GetSessionCheckTimeout() time.Duration {
	if millis, err := strconv.Atoi(c.SessionCheckTimeoutMillis); err == nil {
		return time.Duration(millis) * time.Millisecond
	}
	return 2 * time.Second
}

// GetRateLimitMaxRequests returns the rate limit max requests as integer
func (c *Config) GetRateLimitMaxRequests() int {
	if value, err := strconv.Atoi(c.RateLimitMaxRequests); err == nil {
		return value
	}
	return 100
}

// GetRateLimitTimeWindowSeconds returns the rate limit time window as integer
func (c *Config) GetRateLimitTimeWindowSeconds() int {
	if value, err := strconv.Atoi(c.RateLimitTimeWindowSeconds); err == nil {
		return value
	}
	return 60
}

// GetRateLimitBlockDurationMinutes returns the rate limit block duration as integer
func (c *Config) GetRateLimitBlockDurationMinutes() int {
	if value, err := strconv.Atoi(c.RateLimitBlockDurationMinutes); err == nil {
		return value
	}
	return 15
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
