package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickHz           int
	BroadcastHz      int
	MaxTicksPerFrame int

	// Sessions
	SessionIdleSeconds     int
	IdleWorkerPollInterval int
	SnapshotTTLMinutes     int

	// Security
	JWTSecret         string
	SessionTimeoutMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/slimepool?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation: one tick per millisecond, frames at 30 Hz
		TickHz:           getEnvInt("TICK_HZ", 1000),
		BroadcastHz:      getEnvInt("BROADCAST_HZ", 30),
		MaxTicksPerFrame: getEnvInt("MAX_TICKS_PER_FRAME", 200),

		// Sessions
		SessionIdleSeconds:     getEnvInt("SESSION_IDLE_SECONDS", 900),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),
		SnapshotTTLMinutes:     getEnvInt("SNAPSHOT_TTL_MINUTES", 60*24),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 60*24*7),
	}
}

// TicksPerFrame is the number of simulation ticks each broadcast frame
// advances, capped by MaxTicksPerFrame.
func (c *Config) TicksPerFrame() int {
	if c.BroadcastHz <= 0 {
		return 1
	}
	n := c.TickHz / c.BroadcastHz
	if n < 1 {
		n = 1
	}
	if c.MaxTicksPerFrame > 0 && n > c.MaxTicksPerFrame {
		n = c.MaxTicksPerFrame
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
