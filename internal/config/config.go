package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

const (
	defaultPort       = "5000"
	defaultImageMaxMB = 5
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string

	JWTSecret         []byte
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	ImageBackend   string
	ImageMaxBytes  int64
	UploadDir      string
	ImageRemoteURL string
	ImageRemoteKey string

	CORSOrigins []string

	LogLevel  slog.Level
	LogFormat string
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", defaultPort),
		DBDriver:          getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:       getEnv("DATABASE_URL", "./ghalya.db"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		ImageBackend:      strings.ToLower(getEnv("IMAGE_BACKEND", "inline")),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		ImageRemoteURL:    os.Getenv("IMAGE_REMOTE_URL"),
		ImageRemoteKey:    os.Getenv("IMAGE_REMOTE_KEY"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = defaultPort
	}

	driver, err := store.ParseDriver(cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("DB_DRIVER: %w", err)
	}
	cfg.DBDriver = driver

	// Token secret (critical for security)
	if secret := os.Getenv("JWT_SECRET"); secret == "" {
		slog.Warn("JWT_SECRET environment variable not set. Generating a random secret for development. Admin tokens will be invalid on restart. PLEASE SET JWT_SECRET IN PRODUCTION!")
		cfg.JWTSecret = []byte(base64.StdEncoding.EncodeToString(generateRandomBytes(32)))
	} else {
		if len(secret) < 32 {
			slog.Warn("JWT_SECRET is shorter than 32 characters. PLEASE SET A LONGER JWT_SECRET IN PRODUCTION!")
		}
		cfg.JWTSecret = []byte(secret)
	}

	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}

	maxMB, err := strconv.Atoi(getEnv("IMAGE_MAX_MB", strconv.Itoa(defaultImageMaxMB)))
	if err != nil || maxMB <= 0 {
		slog.Error("Invalid IMAGE_MAX_MB environment variable. Falling back to default.", "IMAGE_MAX_MB", os.Getenv("IMAGE_MAX_MB"))
		maxMB = defaultImageMaxMB
	}
	cfg.ImageMaxBytes = int64(maxMB) << 20

	switch cfg.ImageBackend {
	case "inline", "disk":
	case "remote":
		if cfg.ImageRemoteURL == "" {
			return nil, fmt.Errorf("IMAGE_REMOTE_URL must be set when IMAGE_BACKEND=remote")
		}
	default:
		return nil, fmt.Errorf("unsupported IMAGE_BACKEND %q (want inline, disk or remote)", cfg.ImageBackend)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		slog.Error("Invalid LOG_LEVEL environment variable. Falling back to info.", "LOG_LEVEL", os.Getenv("LOG_LEVEL"))
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		slog.Error("Invalid LOG_FORMAT environment variable. Falling back to text.", "LOG_FORMAT", cfg.LogFormat)
		cfg.LogFormat = "text"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// generateRandomBytes generates a random byte slice of specified length
// using crypto/rand.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the host is unusable for token signing.
		slog.Error("Failed to read random bytes", "error", err)
		os.Exit(1)
	}
	return b
}
