package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Session  SessionConfig
	Chat     ChatConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port         string
	Env          string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// AllowedOrigins lists extra origins permitted for CORS and
	// websocket handshakes; the forum itself is served same-origin.
	AllowedOrigins []string
	// TrustedProxies are CIDR ranges whose forwarding headers are
	// honored when resolving the client IP.
	TrustedProxies []string
}

// AuthConfig carries the login lockout policy. The mechanism (derived from
// attempt history) is fixed; the policy values are not.
type AuthConfig struct {
	// MaxFailures is the consecutive-failure threshold that triggers a
	// lockout for an (ip, username) pair.
	MaxFailures int
	// AttemptWindow is the trailing window over which failures count.
	AttemptWindow time.Duration
	// LockoutDuration is how long a pair stays locked, anchored to its
	// most recent failed attempt.
	LockoutDuration time.Duration
	// LockoutFailOpen controls lockout checks during a storage outage:
	// true degrades to "not locked", false surfaces the outage so the
	// caller can refuse logins entirely.
	LockoutFailOpen bool
	// AttemptRetention is the prune horizon for old attempt rows. Purely
	// operational; correctness never depends on pruning.
	AttemptRetention time.Duration
}

type SessionConfig struct {
	TTL            time.Duration
	SweepInterval  time.Duration
	CookieSecure   bool
	CookieSameSite string
}

type ChatConfig struct {
	// SessionRecheckInterval is how often a live websocket connection
	// re-reads its session from the store between messages.
	SessionRecheckInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "forum"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "3012"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS"),
			TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES"),
		},
		Auth: AuthConfig{
			MaxFailures:      getEnvAsInt("LOGIN_MAX_FAILURES", 5),
			AttemptWindow:    getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
			LockoutDuration:  getEnvAsDuration("LOGIN_LOCKOUT_DURATION", 15*time.Minute),
			LockoutFailOpen:  getEnvAsBool("LOGIN_LOCKOUT_FAIL_OPEN", false),
			AttemptRetention: getEnvAsDuration("LOGIN_ATTEMPT_RETENTION", 24*time.Hour),
		},
		Session: SessionConfig{
			TTL:            getEnvAsDuration("SESSION_TTL", 1*time.Hour),
			SweepInterval:  getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			CookieSecure:   getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite: getEnv("COOKIE_SAMESITE", "lax"),
		},
		Chat: ChatConfig{
			SessionRecheckInterval: getEnvAsDuration("CHAT_SESSION_RECHECK_INTERVAL", 30*time.Second),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateLockoutPolicy(&cfg.Auth); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateLockoutPolicy rejects configurations the lockout algorithm cannot
// make sense of.
func validateLockoutPolicy(auth *AuthConfig) error {
	if auth.MaxFailures < 1 {
		return fmt.Errorf("LOGIN_MAX_FAILURES must be at least 1 (got %d)", auth.MaxFailures)
	}
	if auth.AttemptWindow <= 0 {
		return fmt.Errorf("LOGIN_ATTEMPT_WINDOW must be positive (got %s)", auth.AttemptWindow)
	}
	if auth.LockoutDuration <= 0 {
		return fmt.Errorf("LOGIN_LOCKOUT_DURATION must be positive (got %s)", auth.LockoutDuration)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
