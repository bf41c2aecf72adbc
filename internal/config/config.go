// Package config loads punch settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/balkashynov/punch/internal/db"
)

// Environment variables
const (
	EnvDB                     = "PUNCH_DB"
	EnvUser                   = "PUNCH_USER"
	EnvTimezone               = "PUNCH_TIMEZONE"
	EnvDefaultLocation        = "PUNCH_DEFAULT_LOCATION"
	EnvReminderThreshold      = "PUNCH_REMINDER_THRESHOLD_MINUTES"
	EnvReminderInterval       = "PUNCH_REMINDER_INTERVAL"
	EnvAllowConcurrentSession = "PUNCH_ALLOW_CONCURRENT_SESSIONS"
	EnvGeoTimeout             = "PUNCH_GEO_TIMEOUT"
	EnvHTTPAddr               = "PUNCH_HTTP_ADDR"
	EnvCORSOrigins            = "PUNCH_CORS_ORIGINS"
	EnvLogLevel               = "PUNCH_LOG_LEVEL"
)

// Config holds everything the CLI and server need to wire the app
type Config struct {
	DBPath          string
	UserID          string
	Location        *time.Location
	DefaultLocation string

	ReminderThreshold time.Duration
	ReminderInterval  time.Duration

	AllowConcurrentSessions bool
	GeoTimeout              time.Duration

	HTTPAddr    string
	CORSOrigins []string
	LogLevel    slog.Level
}

// Load reads .env (if any) and the environment. Malformed values are errors
// rather than silently replaced by defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:          strings.TrimSpace(os.Getenv(EnvDB)),
		UserID:          getEnvOrDefault(EnvUser, currentUser()),
		DefaultLocation: getEnvOrDefault(EnvDefaultLocation, "office"),
		HTTPAddr:        getEnvOrDefault(EnvHTTPAddr, ":8080"),
		CORSOrigins:     splitList(getEnvOrDefault(EnvCORSOrigins, "*")),
	}

	var err error
	if cfg.DBPath == "" {
		if cfg.DBPath, err = db.DefaultPath(); err != nil {
			return nil, err
		}
	}
	if cfg.Location, err = loadLocation(os.Getenv(EnvTimezone)); err != nil {
		return nil, err
	}

	minutes, err := getIntEnv(EnvReminderThreshold, 470)
	if err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", EnvReminderThreshold, minutes)
	}
	cfg.ReminderThreshold = time.Duration(minutes) * time.Minute

	if cfg.ReminderInterval, err = getDurationEnv(EnvReminderInterval, time.Minute); err != nil {
		return nil, err
	}
	if cfg.GeoTimeout, err = getDurationEnv(EnvGeoTimeout, 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.AllowConcurrentSessions, err = getBoolEnv(EnvAllowConcurrentSession, false); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = parseLevel(getEnvOrDefault(EnvLogLevel, "info")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger returns a text logger at the configured level writing to w
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// Debug reports whether debug logging (including SQL) is on
func (c *Config) Debug() bool {
	return c.LogLevel <= slog.LevelDebug
}

func getEnvOrDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
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

func getIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, val)
	}
	return n, nil
}

func getBoolEnv(key string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return def, nil
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s: invalid boolean %q", key, os.Getenv(key))
	}
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, val)
	}
	return d, nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvTimezone, err)
	}
	return loc, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%s: invalid level %q", EnvLogLevel, s)
	}
	return level, nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "me"
}
