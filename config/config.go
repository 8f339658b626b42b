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
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Env            string
	Port           string
	Location       *time.Location
	LateCutoff     Cutoff
	RequestTimeout time.Duration
	RateLimitMax   int
	AllowedOrigins string
}

type DatabaseConfig struct {
	Driver          string // postgres | mysql | sqlite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

// Cutoff is a wall-clock time of day, e.g. 08:00.
type Cutoff struct {
	Hour   int
	Minute int
}

// ParseCutoff parses "HH:MM".
func ParseCutoff(s string) (Cutoff, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Cutoff{}, fmt.Errorf("invalid cutoff %q: %w", s, err)
	}
	return Cutoff{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On returns the cutoff instant on the calendar day of t, in t's location.
func (c Cutoff) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(GetEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cutoff, err := ParseCutoff(GetEnv("LATE_CUTOFF", "08:00"))
	if err != nil {
		return nil, fmt.Errorf("LATE_CUTOFF: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:            GetEnv("APP_ENV", "development"),
			Port:           GetEnv("APP_PORT", "3000"),
			Location:       loc,
			LateCutoff:     cutoff,
			RequestTimeout: GetEnvAsDuration("REQUEST_TIMEOUT", 5*time.Second),
			RateLimitMax:   GetEnvAsInt("RATE_LIMIT_MAX", 100),
			AllowedOrigins: GetEnv("ALLOWED_ORIGINS", "*"),
		},
		Database: loadDatabase(),
		Auth: AuthConfig{
			JWTSecret: GetEnv("JWT_SECRET", ""),
		},
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools that do not
// serve HTTP.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return loadDatabase()
}

func loadDatabase() DatabaseConfig {
	driver := GetEnv("DB_DRIVER", "postgres")
	dsn := GetEnv("DB_DSN", "")
	if dsn == "" {
		dsn = buildDSN(driver)
	}
	return DatabaseConfig{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    GetEnvAsInt("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    GetEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: GetEnvAsDuration("DB_CONN_MAX_LIFETIME", 10*time.Minute),
		SlowThreshold:   GetEnvAsDuration("DB_SLOW_THRESHOLD", 200*time.Millisecond),
	}
}

func buildDSN(driver string) string {
	host := GetEnv("DB_HOST", "127.0.0.1")
	user := GetEnv("DB_USER", "postgres")
	password := GetEnv("DB_PASSWORD", "")
	name := GetEnv("DB_NAME", "attendance")

	switch driver {
	case "mysql":
		// user:password@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=UTC
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			user, password, host, GetEnv("DB_PORT", "3306"), name)
	case "sqlite":
		return GetEnv("SQLITE_PATH", "./data/attendance.db")
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			host, GetEnv("DB_PORT", "5432"), user, password, name, GetEnv("DB_SSLMODE", "disable"))
	}
}

// GetEnv returns the environment variable or fallback when unset.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvAsInt returns the environment variable as integer with fallback.
func GetEnvAsInt(key string, fallback int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// GetEnvAsDuration accepts Go durations ("5s", "2m").
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
