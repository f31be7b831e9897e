package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"async-standup/pkg/logger"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMySQL    = "mysql"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTPPort           string
	Env                string
	StorageDriver      string
	CORSAllowedOrigins []string
	SentryDSN          string
	DB                 DBConfig
	Session            SessionConfig
	Admin              AdminConfig
	Mail               MailConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// AdminConfig holds the bootstrap admin credentials. Both empty means no bootstrap.
type AdminConfig struct {
	Username string
	Password string
}

type MailConfig struct {
	SendGridAPIKey string
	FromAddress    string
	FromName       string
	BaseURL        string
	Timeout        time.Duration
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	env := getEnv("ENV", "development")
	cfg := Config{
		HTTPPort:           getEnv("HTTP_PORT", "5000"),
		Env:                env,
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", getEnv("DATABASE_URL", "")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "async_standup"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", ""),
			TTL:          getEnvDuration("SESSION_TTL", 24*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "standup_session"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", env == "production"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Mail: MailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromAddress:    getEnv("MAIL_FROM", "noreply@asyncstandup.com"),
			FromName:       getEnv("MAIL_FROM_NAME", "Async Standup"),
			BaseURL:        strings.TrimRight(getEnv("BASE_URL", "http://localhost:5000"), "/"),
			Timeout:        getEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMySQL, StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.Env == "production" && c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// GetMySQLDSN builds a go-sql-driver DSN from the discrete fields when no DSN is set.
func (c DBConfig) GetMySQLDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return c.User + ":" + c.Password +
		"@tcp(" + c.Host + ":" + c.Port + ")/" + c.Name +
		"?charset=utf8mb4&parseTime=True&loc=UTC"
}
