// Package config reads process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port        string
	Env         string
	CORSOrigins []string

	JWTSecret          []byte
	TokenTTL           time.Duration
	BcryptCost         int
	RevocationCapacity int

	DatabaseURL   string
	EncryptionKey []byte
	BlindIndexKey []byte

	ScanDelay     time.Duration
	ScanTimeout   time.Duration
	ScanWorkers   int
	ScanQueueSize int
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		Env:         getenv("APP_ENV", EnvDevelopment),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("APP_ENV: unknown environment %q", cfg.Env)
	}

	for _, o := range strings.Split(getenv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	cfg.JWTSecret = []byte(secret)

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST: must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.RevocationCapacity, err = intEnv("REVOCATION_CAPACITY", 10000); err != nil {
		return nil, err
	}
	if cfg.ScanDelay, err = durationEnv("SCAN_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ScanTimeout, err = durationEnv("SCAN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ScanWorkers, err = intEnv("SCAN_WORKERS", 2); err != nil {
		return nil, err
	}
	if cfg.ScanQueueSize, err = intEnv("SCAN_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL != "" {
		if cfg.EncryptionKey, err = keyEnv("ENCRYPTION_KEY"); err != nil {
			return nil, err
		}
		if cfg.BlindIndexKey, err = keyEnv("BLIND_INDEX_KEY"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) Development() bool { return c.Env == EnvDevelopment }

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return n, nil
}

// keyEnv decodes a 32-byte key given as 64 hex characters.
func keyEnv(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, fmt.Errorf("%s is required when DATABASE_URL is set", key)
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%s: must decode to 32 bytes", key)
	}
	return b, nil
}
