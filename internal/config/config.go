package config

import (
	"errors"  // For validation errors
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to number conversion
	"strings" // For value normalisation
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Store and cache drivers
const (
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	StoreDriver           string        // mysql or memory
	CacheDriver           string        // redis or memory
	CacheTTL              time.Duration // Lifetime of read snapshots
	VerificationThreshold int           // Distinct endorsements that verify a request
	SettlementMaxAttempts int           // Commit attempts per ledger mutation
	RateLimitRPS          float64       // Mutating requests per second per user
	RateLimitBurst        int           // Token bucket size per user
	MetricsEnabled        bool          // Expose /metrics
}

// LoadConfig loads configuration from environment variables, falling back
// to defaults for blank or unparsable values
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:    envString("APP_PORT", "8080"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     envString("DB_HOST", "127.0.0.1"),
		DBPort:     envString("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RedisAddr:  envString("REDIS_ADDR", "localhost:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		RedisDB:    envInt("REDIS_DB", 0),
		IsProd:     envBool("IS_PROD", false),

		StoreDriver:           envChoice("STORE_DRIVER", DriverMySQL, DriverMySQL, DriverMemory),
		CacheDriver:           envChoice("CACHE_DRIVER", DriverRedis, DriverRedis, DriverMemory),
		CacheTTL:              time.Duration(envInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		VerificationThreshold: envInt("VERIFICATION_THRESHOLD", 3),
		SettlementMaxAttempts: envInt("SETTLEMENT_MAX_ATTEMPTS", 5),
		RateLimitRPS:          envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:        envInt("RATE_LIMIT_BURST", 10),
		MetricsEnabled:        envBool("METRICS_ENABLED", true),
	}
}

// ErrMissingJWTSecret is returned by Validate when JWT_SECRET is unset
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret // tokens could be neither issued nor checked
	}
	return nil
}

// DSN builds the MySQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt rejects negatives, and zero unless zero is the default
func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n < 0 || (n == 0 && def != 0) {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return b
}

func envChoice(key, def string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}
