package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort        = "8080"
	defaultDatabaseURL = "linkup.db"
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultJWTTTL      = "24h"
	defaultTimezone    = "America/Chicago"
	defaultDayStart    = "08:00"
	defaultDayEnd      = "20:00"
	defaultOpenFrom    = "00:00"
	defaultOpenUntil   = "23:59"
	defaultSlotLength  = "1h"
	defaultSlotStep    = "30m"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration
	Location    *time.Location

	// Listing window and reservable window, "HH:MM" local time.
	DayStart   string
	DayEnd     string
	OpenFrom   string
	OpenUntil  string
	SlotLength time.Duration
	SlotStep   time.Duration

	CORSOrigins []string
	RabbitMQURL string
	SweepCron   string

	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("APP_TIMEZONE", defaultTimezone))
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE value %q: %w", tz, err)
	}

	cfg.DayStart = strings.TrimSpace(getEnv("DAY_START", defaultDayStart))
	cfg.DayEnd = strings.TrimSpace(getEnv("DAY_END", defaultDayEnd))
	cfg.OpenFrom = strings.TrimSpace(getEnv("RESERVABLE_FROM", defaultOpenFrom))
	cfg.OpenUntil = strings.TrimSpace(getEnv("RESERVABLE_UNTIL", defaultOpenUntil))

	cfg.SlotLength, err = parseDurationEnv("SLOT_LENGTH", defaultSlotLength)
	if err != nil {
		return nil, err
	}
	cfg.SlotStep, err = parseDurationEnv("SLOT_STEP", defaultSlotStep)
	if err != nil {
		return nil, err
	}

	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.RabbitMQURL = strings.TrimSpace(os.Getenv("RABBITMQ_URL"))
	cfg.SweepCron = strings.TrimSpace(os.Getenv("SWEEP_CRON"))

	cfg.Redis = loadRedisConfig()
	cfg.RateLimit = loadRateLimitConfig()

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s port=%s tz=%s day=%s-%s slot=%s/%s", cfg.AppEnv, cfg.Port, cfg.Location, cfg.DayStart, cfg.DayEnd, cfg.SlotLength, cfg.SlotStep)

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SlotLength <= 0 || cfg.SlotStep <= 0 {
		return fmt.Errorf("SLOT_LENGTH and SLOT_STEP must be > 0")
	}
	for name, v := range map[string]string{
		"DAY_START":        cfg.DayStart,
		"DAY_END":          cfg.DayEnd,
		"RESERVABLE_FROM":  cfg.OpenFrom,
		"RESERVABLE_UNTIL": cfg.OpenUntil,
	} {
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("%s must be HH:MM, got %q", name, v)
		}
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}

	return nil
}

func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseIntEnv(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
