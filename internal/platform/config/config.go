package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"docverify/internal/document/crossval"
)

// Storage backends for verification records.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr     string
	LogLevel string

	Storage     string
	PostgresDSN string
	Redis       RedisConfig

	// HashSalt keys the identity hashes stored with each verification.
	HashSalt string
	// VerificationTTL bounds how long records live in the redis backend.
	VerificationTTL time.Duration

	BatchConcurrency int
	MaxBatchSize     int

	// ValidationConfigPath points at an optional YAML file of cross-validation
	// thresholds; see LoadValidation.
	ValidationConfigPath string
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	salt := os.Getenv("DOCVERIFY_HASH_SALT")
	if salt == "" {
		// Development default; production deployments must set their own.
		salt = "dev-salt-change-in-production"
	}

	return Server{
		Addr:        envOr("DOCVERIFY_ADDR", ":8080"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		Storage:     envOr("DOCVERIFY_STORAGE", StorageMemory),
		PostgresDSN: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		HashSalt:             salt,
		VerificationTTL:      envDuration("DOCVERIFY_VERIFICATION_TTL", 24*time.Hour),
		BatchConcurrency:     envInt("DOCVERIFY_BATCH_CONCURRENCY", 4),
		MaxBatchSize:         envInt("DOCVERIFY_MAX_BATCH_SIZE", 50),
		ValidationConfigPath: os.Getenv("DOCVERIFY_VALIDATION_CONFIG"),
	}
}

// LoadValidation reads cross-validation settings from a YAML file layered over
// crossval.DefaultConfig. Keys absent from the file keep their defaults; field
// weights are merged per field. An empty path returns the defaults.
func LoadValidation(path string) (crossval.Config, error) {
	cfg := crossval.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return crossval.Config{}, fmt.Errorf("read validation config: %w", err)
	}
	return ParseValidation(raw)
}

// ParseValidation decodes YAML validation settings over the defaults.
func ParseValidation(raw []byte) (crossval.Config, error) {
	cfg := crossval.DefaultConfig()
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return crossval.Config{}, fmt.Errorf("decode validation config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return crossval.Config{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
