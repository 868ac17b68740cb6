package config

import (
	"context"
	"crypto/tls"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// Redis is optional: an empty REDIS_ADDR leaves rate limiting disabled.
func loadRedisConfig() RedisConfig {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	return RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       parseIntEnv("REDIS_DB", 0),
		TLS:      parseBoolEnv("REDIS_TLS", "false"),
	}
}

// NewRedisClient returns nil when Redis is not configured or unreachable;
// callers degrade by skipping the features that need it.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s failed, rate limiting disabled: %v", cfg.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}
