// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	// Simulation parameters
	StartDate       time.Time // First simulated instant
	EndDate         time.Time // Simulation halts once the clock reaches this date
	SpeedMultiplier float64   // Simulated-time acceleration on top of the fixed 120x scale
	Seed            int64     // RNG seed for the event generator (0 = derive from wall clock)
	TickInterval    time.Duration
	PauseOnDayEnd   bool // Pause after each completed weekday so the UI can show a summary

	// Portfolio parameters
	StartingCash float64
}

const (
	defaultStartDate = "2024-01-08" // a Monday
	defaultEndDate   = "2024-02-09"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	startDate, err := parseDate(getEnv("SIM_START_DATE", defaultStartDate))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_START_DATE: %w", err)
	}
	endDate, err := parseDate(getEnv("SIM_END_DATE", defaultEndDate))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_END_DATE: %w", err)
	}

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8002),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		StartDate:       startDate,
		EndDate:         endDate,
		SpeedMultiplier: getEnvAsFloat("SIM_SPEED", 1.0),
		Seed:            int64(getEnvAsInt("SIM_SEED", 0)),
		TickInterval:    time.Duration(getEnvAsInt("SIM_TICK_MS", 200)) * time.Millisecond,
		PauseOnDayEnd:   getEnvAsBool("SIM_PAUSE_ON_DAY_END", true),
		StartingCash:    getEnvAsFloat("SIM_STARTING_CASH", 1_000_000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("SIM_END_DATE must be after SIM_START_DATE")
	}
	if c.SpeedMultiplier <= 0 {
		return fmt.Errorf("SIM_SPEED must be positive, got %v", c.SpeedMultiplier)
	}
	if c.StartingCash < 0 {
		return fmt.Errorf("SIM_STARTING_CASH must not be negative, got %v", c.StartingCash)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("SIM_TICK_MS must be positive")
	}
	return nil
}

// parseDate parses a YYYY-MM-DD date. The simulated day starts at 08:00,
// just before the morning briefing.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(8 * time.Hour), nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
