package config

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
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// MaxProviderRetries bounds PROVIDER_RETRIES.
const MaxProviderRetries = 10

// Config holds every runtime setting of the server.
type Config struct {
	Port        string
	StoreDriver string
	MongoURI    string
	MongoDB     string

	JWTSecret   string
	TokenExpiry time.Duration

	CodeforcesBaseURL    string
	LadderBaseURL        string
	ProviderTimeout      time.Duration
	ProviderRateInterval time.Duration
	ProviderRetries      uint
	ProviderCacheTTL     time.Duration
	VerifyHandleOnSignup bool

	SearchLimit              int64
	RecommendationCount      int
	RecommendationStaleAfter time.Duration
	PurgeSchedule            string
	PurgeAfter               time.Duration

	AllowedOrigins []string
	LogLevel       string
	LogFile        string
}

// LoadConfig reads the .env file (if any) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "cf_social"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 72*time.Hour),

		CodeforcesBaseURL:    strings.TrimRight(getEnv("CODEFORCES_BASE_URL", "https://codeforces.com/api"), "/"),
		LadderBaseURL:        strings.TrimRight(getEnv("LADDER_BASE_URL", "https://acodedaily.com/api/v2"), "/"),
		ProviderTimeout:      getDuration("PROVIDER_TIMEOUT", 10*time.Second),
		ProviderRateInterval: getDuration("PROVIDER_RATE_INTERVAL", 2*time.Second),
		ProviderRetries:      getUint("PROVIDER_RETRIES", 3),
		ProviderCacheTTL:     getDuration("PROVIDER_CACHE_TTL", 5*time.Minute),
		VerifyHandleOnSignup: getBool("VERIFY_HANDLE_ON_SIGNUP", false),

		SearchLimit:              int64(getInt("SEARCH_LIMIT", 10)),
		RecommendationCount:      getInt("RECOMMENDATION_COUNT", 25),
		RecommendationStaleAfter: getDuration("RECOMMENDATION_STALE_AFTER", 48*time.Hour),
		PurgeSchedule:            getEnv("RECOMMENDATION_PURGE_SCHEDULE", "@daily"),
		PurgeAfter:               getDuration("RECOMMENDATION_PURGE_AFTER", 14*24*time.Hour),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("SEARCH_LIMIT must be positive")
	}
	if c.RecommendationCount <= 0 {
		return fmt.Errorf("RECOMMENDATION_COUNT must be positive")
	}
	if c.ProviderRetries > MaxProviderRetries {
		return fmt.Errorf("PROVIDER_RETRIES must be at most %d", MaxProviderRetries)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("Invalid integer, using default")
		return fallback
	}
	return n
}

// getUint parses a non-negative integer. Negative values fall back instead
// of wrapping around.
func getUint(key string, fallback uint) uint {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("Invalid non-negative integer, using default")
		return fallback
	}
	return uint(n)
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("Invalid boolean, using default")
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("Invalid duration, using default")
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
