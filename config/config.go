package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL       string
	JWTSecretKey      string
	ServerPort        int
	AdminPasswordHash string
	PublicURL         string

	FlushInterval      time.Duration
	LogLevel           slog.Level
	CORSAllowedOrigins []string

	R2 R2Config

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
	Endpoint        string
}

// Enabled сообщает, заданы ли все параметры хранилища.
func (c R2Config) Enabled() bool {
	return (c.AccountID != "" || c.Endpoint != "") && c.AccessKeyID != "" &&
		c.SecretAccessKey != "" && c.BucketName != "" && c.PublicBaseURL != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию через getenv, чтобы её можно было проверять в тестах.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intOrDefault(getenv("SERVER_PORT"), 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	flushInterval := 2 * time.Second
	if v := getenv("FLUSH_INTERVAL"); v != "" {
		flushInterval, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FLUSH_INTERVAL environment variable: %w", err)
		}
		if flushInterval <= 0 {
			return nil, fmt.Errorf("FLUSH_INTERVAL must be positive, got %s", flushInterval)
		}
	}

	var level slog.Level
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	smtpPort, err := intOrDefault(getenv("SMTP_PORT"), 587)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT environment variable: %w", err)
	}

	publicURL := getenv("PUBLIC_URL")
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", port)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		AdminPasswordHash:  getenv("ADMIN_PASSWORD_HASH"),
		PublicURL:          strings.TrimSuffix(publicURL, "/"),
		FlushInterval:      flushInterval,
		LogLevel:           level,
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		R2: R2Config{
			AccountID:       getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
			Endpoint:        getenv("R2_ENDPOINT"),
		},
		SMTPHost: getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: getenv("SMTP_USER"),
		SMTPPass: getenv("SMTP_PASS"),
		SMTPFrom: getenv("SMTP_FROM"),
	}

	return cfg, nil
}

func intOrDefault(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func splitList(v string, def []string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
