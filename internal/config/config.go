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
)

type Config struct {
	Port           string
	Env            string
	DBDriver       string
	DatabaseURL    string
	JWTSecret      []byte
	JWTTTL         time.Duration
	EncryptionKey  []byte
	BlindIndexKey  []byte
	AllowedOrigins []string
	LogFile        string
	Mail           MailConfig
}

type MailConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP server is configured.
func (m MailConfig) Enabled() bool { return m.Server != "" }

func (c Config) IsDevelopment() bool { return c.Env == "development" }

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func hexKey(key string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex encoded: %w", key, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", key, len(b))
	}
	return b, nil
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:        getenv("PORT", "8080"),
		Env:         getenv("APP_ENV", "production"),
		DBDriver:    getenv("DB_DRIVER", "pgx"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	switch cfg.DBDriver {
	case "pgx", "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be pgx or sqlite, got %q", cfg.DBDriver)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	cfg.JWTSecret = []byte(secret)

	ttlHours, err := getenvInt("JWT_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	if ttlHours <= 0 {
		return Config{}, errors.New("JWT_TTL_HOURS must be positive")
	}
	cfg.JWTTTL = time.Duration(ttlHours) * time.Hour

	if cfg.EncryptionKey, err = hexKey("ENCRYPTION_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.BlindIndexKey, err = hexKey("BLIND_INDEX_KEY"); err != nil {
		return Config{}, err
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://localhost:8080"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	mailPort, err := getenvInt("MAIL_PORT", 587)
	if err != nil {
		return Config{}, err
	}
	cfg.Mail = MailConfig{
		Server:   os.Getenv("MAIL_SERVER"),
		Port:     mailPort,
		Username: os.Getenv("MAIL_USERNAME"),
		Password: os.Getenv("MAIL_PASSWORD"),
		From:     getenv("MAIL_FROM", os.Getenv("MAIL_USERNAME")),
	}

	return cfg, nil
}
