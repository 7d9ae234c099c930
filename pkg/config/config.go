package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Store drivers selectable with STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Rate limit strategies selectable with RATE_LIMIT_STRATEGY.
const (
	RateLimitFixed = "fixed"
	RateLimitToken = "token"
)

const devJWTSecret = "publishare-dev-secret"

type Config struct {
	Port                    string
	Env                     string
	StoreDriver             string
	MongoURI                string
	MongoDatabase           string
	PostgresUrl             string
	JWTSecret               string
	JWTTTL                  time.Duration
	FirebaseCredentialsPath string
	RateLimitRequests       int
	RateLimitWindow         time.Duration
	RateLimitStrategy       string
	CORSAllowedOrigins      []string
	AuthMaxFailedLogins     int
	AuthLockDuration        time.Duration
	RequestTimeout          time.Duration
	DefaultProfileImage     string
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UsesDevJWTSecret reports whether tokens are signed with the built-in development secret.
func (c *Config) UsesDevJWTSecret() bool {
	return c.JWTSecret == devJWTSecret
}

// WarnInsecureDefaults logs settings that must not reach a production deploy.
func (c *Config) WarnInsecureDefaults(log *zap.Logger) {
	if c.UsesDevJWTSecret() {
		log.Warn("JWT_SECRET not set, signing tokens with the public development secret",
			zap.String("env", c.Env))
	}
}

// Load reads configuration from the environment, after loading a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		StoreDriver:             strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "publishare"),
		PostgresUrl:             getEnv("POSTGRES_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		RateLimitStrategy:       strings.ToLower(getEnv("RATE_LIMIT_STRATEGY", RateLimitFixed)),
		CORSAllowedOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DefaultProfileImage:     getEnv("DEFAULT_PROFILE_IMAGE", ""),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 4*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 1000); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AuthMaxFailedLogins, err = getInt("AUTH_MAX_FAILED_LOGINS", 5); err != nil {
		return nil, err
	}
	if cfg.AuthLockDuration, err = getDuration("AUTH_LOCK_DURATION", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if c.PostgresUrl == "" {
			return errors.New("POSTGRES_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.RateLimitStrategy {
	case RateLimitFixed, RateLimitToken:
	default:
		return fmt.Errorf("unknown RATE_LIMIT_STRATEGY %q", c.RateLimitStrategy)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET must be set outside development")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.AuthMaxFailedLogins < 0 {
		return errors.New("AUTH_MAX_FAILED_LOGINS must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
