package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default values for process configuration.
const (
	DefaultPort       = "8080"
	DefaultTimeZone   = "America/Los_Angeles"
	DefaultCalendarID = "primary"
	DefaultWorkStart  = "09:00"
	DefaultWorkEnd    = "17:00"
	DefaultBufferMin  = 30
)

// Config holds the process-wide booking configuration. It is built once at
// startup from the environment and treated as read-only afterwards; core
// logic receives it by injection and never reads the environment itself.
type Config struct {
	// Port is the listen port for the booking API server.
	Port string

	// TimeZone is the IANA timezone identifier governing work hours.
	TimeZone string

	// Location is the loaded timezone, resolved from TimeZone during Load.
	Location *time.Location

	// CalendarID is the Google Calendar the service books against.
	CalendarID string

	// WorkStart and WorkEnd are HH:mm wall-clock bounds of the bookable day.
	WorkStart string
	WorkEnd   string

	// Buffer is the minimum gap kept between a booking and any busy interval.
	Buffer time.Duration
}

// Load builds the configuration from environment variables, applying
// defaults and validating eagerly. Any violation is returned as an error so
// the process can fail fast instead of running misconfigured.
func Load() (Config, error) {
	cfg := Config{
		Port:       getEnvOrDefault("PORT", DefaultPort),
		TimeZone:   getEnvOrDefault("TZ", DefaultTimeZone),
		CalendarID: getEnvOrDefault("GOOGLE_CALENDAR_ID", DefaultCalendarID),
		WorkStart:  getEnvOrDefault("WORK_START", DefaultWorkStart),
		WorkEnd:    getEnvOrDefault("WORK_END", DefaultWorkEnd),
	}

	bufferMin, err := getEnvIntOrDefault("BUFFER_MIN", DefaultBufferMin)
	if err != nil {
		return Config{}, err
	}
	cfg.Buffer = time.Duration(bufferMin) * time.Minute

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Validate checks the configuration invariants that do not require loading
// the timezone database.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}

	start, err := time.Parse("15:04", c.WorkStart)
	if err != nil {
		return fmt.Errorf("invalid WORK_START %q: must be HH:mm", c.WorkStart)
	}
	end, err := time.Parse("15:04", c.WorkEnd)
	if err != nil {
		return fmt.Errorf("invalid WORK_END %q: must be HH:mm", c.WorkEnd)
	}
	if !start.Before(end) {
		return fmt.Errorf("work window %s-%s is empty", c.WorkStart, c.WorkEnd)
	}

	if c.Buffer < 0 {
		return fmt.Errorf("BUFFER_MIN must be non-negative, got %v", c.Buffer)
	}

	if c.CalendarID == "" {
		return fmt.Errorf("GOOGLE_CALENDAR_ID must not be empty")
	}

	return nil
}

// Addr returns the listen address for the API server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the integer value of an environment variable or
// a default value. Unlike the lenient boolean/float helpers elsewhere, a
// malformed integer here is a configuration error, not something to paper
// over with a default.
func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}
