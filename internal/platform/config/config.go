package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort      string
	StorageDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int

	RedisHost    string
	RedisPort    string
	RedisDB      int
	SeatCacheTTL time.Duration

	RabbitURL         string
	NotifyWorkers     int
	NotifyQueueSize   int
	NotifyMaxAttempts int

	HoldTTL            time.Duration
	CancellationWindow time.Duration
	SweepInterval      time.Duration
	SeatsPerRow        int
	MaxSeatsPerBooking int
	Timezone           string

	JWTSecret string
	LogLevel  string
	LogFormat string
}

// Load reads .env when present, then the process environment. Malformed
// numbers and durations are reported instead of silently defaulted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	p := &parser{}
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "transit_reservation"),
		DBMaxConns: p.int("DB_MAX_CONNS", 25),

		RedisHost:    getEnv("REDIS_HOST", ""),
		RedisPort:    getEnv("REDIS_PORT", "6379"),
		RedisDB:      p.int("REDIS_DB", 0),
		SeatCacheTTL: p.duration("SEAT_CACHE_TTL", 5*time.Second),

		RabbitURL:         getEnv("RABBITMQ_URL", ""),
		NotifyWorkers:     p.int("NOTIFY_WORKERS", 2),
		NotifyQueueSize:   p.int("NOTIFY_QUEUE_SIZE", 256),
		NotifyMaxAttempts: p.int("NOTIFY_MAX_ATTEMPTS", 3),

		HoldTTL:            p.duration("HOLD_TTL", 10*time.Minute),
		CancellationWindow: p.duration("CANCELLATION_WINDOW", 24*time.Hour),
		SweepInterval:      p.duration("SWEEP_INTERVAL", time.Minute),
		SeatsPerRow:        p.int("SEATS_PER_ROW", 4),
		MaxSeatsPerBooking: p.int("MAX_SEATS_PER_BOOKING", 10),
		Timezone:           getEnv("TIMEZONE", "UTC"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMemory, StoragePostgres, c.StorageDriver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.HoldTTL <= 0 || c.SweepInterval <= 0 {
		return fmt.Errorf("HOLD_TTL and SWEEP_INTERVAL must be positive")
	}

	if c.SeatsPerRow <= 0 {
		return fmt.Errorf("SEATS_PER_ROW must be positive")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

type parser struct {
	err error
}

func (p *parser) int(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return n
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return d
}
