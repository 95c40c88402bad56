package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"osca-hub-go/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	Env                string
	OfflineSyncEnabled bool
	CORSOrigins        []string
	Auth               AuthConfig
	SeniorsCache       SeniorsCacheConfig
	DB                 DBConfig
}

type AuthConfig struct {
	JWTSecret     string
	TokenValidity time.Duration
}

type SeniorsCacheConfig struct {
	Enabled bool
	TTL     time.Duration
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

func Load(log logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		log.Info("dotenv: no .env file, using process environment")
	}

	return Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		OfflineSyncEnabled: getEnvBool("OFFLINE_SYNC_ENABLED", true),
		CORSOrigins:        []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenValidity: getEnvDuration("JWT_TOKEN_VALIDITY", 12*time.Hour),
		},
		SeniorsCache: SeniorsCacheConfig{
			Enabled: getEnvBool("SENIORS_CACHE_ENABLED", true),
			TTL:     getEnvDuration("SENIORS_CACHE_TTL", time.Minute),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "osca_hub"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
	}, nil
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
