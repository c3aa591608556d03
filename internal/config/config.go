package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	LogLevel   string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	FeedURL       string
	FeedTimeout   time.Duration
	FetchInterval time.Duration

	CacheTTL                  time.Duration
	CacheCompression          bool
	CacheCompressionThreshold int

	RateLimitAnonymous     int
	RateLimitAuthenticated int
	RateLimitPremium       int

	SnapshotRetentionDays int

	AdminAPIKey string
	HMACSalt    string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPoolSize: getEnvInt("REDIS_POOL_SIZE", 20),

		FeedURL:       getEnv("FIVE_T_API_URL", "https://opendata.5t.torino.it/get_pk"),
		FeedTimeout:   time.Duration(getEnvInt("FIVE_T_TIMEOUT_SECONDS", 10)) * time.Second,
		FetchInterval: time.Duration(getEnvInt("FETCH_INTERVAL_SECONDS", 120)) * time.Second,

		CacheTTL:                  time.Duration(getEnvInt("CACHE_TTL_SECONDS", 120)) * time.Second,
		CacheCompression:          getEnvBool("CACHE_COMPRESSION", true),
		CacheCompressionThreshold: getEnvInt("CACHE_COMPRESSION_THRESHOLD", 512),

		RateLimitAnonymous:     getEnvInt("RATE_LIMIT_ANONYMOUS", 20),
		RateLimitAuthenticated: getEnvInt("RATE_LIMIT_AUTHENTICATED", 100),
		RateLimitPremium:       getEnvInt("RATE_LIMIT_PREMIUM", 1000),

		SnapshotRetentionDays: getEnvInt("SNAPSHOT_RETENTION_DAYS", 30),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		HMACSalt:    getEnv("HMAC_SALT", ""),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Environment variable '%s' is not a number, using default %d", key, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Environment variable '%s' is not a boolean, using default %t", key, fallback)
	}
	return fallback
}
