package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port            string
	Prefix          string
	Message         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Driver      string // mongo or postgres
	MongoURL    string
	Name        string
	Collection  string
	DatabaseURL string
	MaxConns    int
	MinConns    int
	MaxLifetime time.Duration
	Timeout     time.Duration
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret         string
	AdminTokenTTL     time.Duration
	AdminPassword     string
	AdminPasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Prefix:          getEnv("API_PREFIX", "/api"),
			Message:         getEnv("API_MESSAGE", "Wedding RSVP API"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
			MongoURL:    getEnv("MONGO_URL", ""),
			Name:        getEnv("DB_NAME", ""),
			Collection:  getEnv("RSVP_COLLECTION", "rsvps"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			MaxConns:    getInt("DB_MAX_CONNS", 10),
			MinConns:    getInt("DB_MIN_CONNS", 1),
			MaxLifetime: getDuration("DB_MAX_LIFETIME", time.Hour),
			Timeout:     getDuration("STORE_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			AdminTokenTTL:     getDuration("ADMIN_TOKEN_TTL", 24*time.Hour),
			AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ORIGINS", []string{"*"}),
		},
		RateLimit: RateLimitConfig{
			Requests: getInt("RSVP_RATE_LIMIT", 20),
			Window:   getDuration("RSVP_RATE_WINDOW", time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMongo:
		if c.Store.MongoURL == "" {
			errs = append(errs, errors.New("MONGO_URL is required"))
		}
		if c.Store.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be mongo or postgres"))
	}

	if !strings.HasPrefix(c.Server.Prefix, "/") || strings.HasSuffix(c.Server.Prefix, "/") {
		errs = append(errs, errors.New("API_PREFIX must start with / and must not end with /"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required"))
	}
	if c.Auth.AdminPasswordHash != "" {
		if _, _, _, err := argon2id.DecodeHash(c.Auth.AdminPasswordHash); err != nil {
			errs = append(errs, fmt.Errorf("ADMIN_PASSWORD_HASH is not a valid argon2id hash: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RateLimitEnabled is true when a Redis URL is configured.
func (c *Config) RateLimitEnabled() bool {
	return c.Redis.URL != "" && c.RateLimit.Requests > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
