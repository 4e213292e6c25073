package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all runtime configuration. It is loaded once at
// startup and handed to the collaborators that need it; nothing in
// the codebase reads the environment after Load returns.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	JWTSecret   string
	TokenExpiry time.Duration

	// OdometerCheck selects how a regressing end odometer is handled
	// on trip completion: "warn", "reject" or "off".
	OdometerCheck string

	MQTTBroker   string // empty disables event publishing
	MQTTClientID string

	RateLimitRequests int
	RateLimitWindow   int // seconds
}

// Load reads configuration from the environment, merging a .env file
// when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	return &Config{
		Port:              envOr("PORT", "8080"),
		MongoURI:          envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     envOr("MONGO_DATABASE", "fleetflow"),
		JWTSecret:         envOr("JWT_SECRET", "fleetflow-dev-secret-change-in-production"),
		TokenExpiry:       envDurationOr("JWT_EXPIRY", 24*time.Hour),
		OdometerCheck:     envOr("ODOMETER_CHECK", "warn"),
		MQTTBroker:        os.Getenv("MQTT_BROKER"),
		MQTTClientID:      envOr("MQTT_CLIENT_ID", "fleetflow-api"),
		RateLimitRequests: envIntOr("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   envIntOr("RATE_LIMIT_WINDOW", 60),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.WithField("key", key).Warn("Invalid duration value, using default")
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.WithField("key", key).Warn("Invalid integer value, using default")
	}
	return fallback
}
