package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/database"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the labour service
type Config struct {
	Port       string
	GinMode    string
	Database   database.Config
	JWTSecret  string
	APISecret  string
	AdminUser  string
	AdminPass  string
	RedisAddr  string
	RedisPass  string
	Kafka      []string
	KafkaTopic string
	CORS       []string
	Location   *time.Location
	Cron       Schedules
	LogLevel   string
	LogFormat  string
}

// Schedules holds the trigger expressions of the periodic scans
type Schedules struct {
	Upcoming string
	Shortage string
	Overtime string
}

// DefaultSchedules: hourly reminders, 06:00 shortage forecast, 17:00 overtime audit
var DefaultSchedules = Schedules{
	Upcoming: "0 * * * *",
	Shortage: "0 6 * * *",
	Overtime: "0 17 * * *",
}

// LoadEnv loads the first .env found in the working directory or its parents
func LoadEnv() {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
}

// Getenv returns the value of key, or fallback when unset or empty
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// Load reads the configuration from the environment. An unknown
// TZ_LOCATION is an error since it sets the scans' day boundaries.
func Load() (Config, error) {
	zone := Getenv("TZ_LOCATION", "Local")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TZ_LOCATION %q: %w", zone, err)
	}

	return Config{
		Port:    Getenv("PORT", "8000"),
		GinMode: os.Getenv("GIN_MODE"),
		Database: database.Config{
			Driver:   os.Getenv("DB_DRIVER"),
			URL:      os.Getenv("DATABASE_URL"),
			DataPath: Getenv("DATA_PATH", "labour.db"),
			Verbose:  os.Getenv("DB_DEBUG") == "true",
		},
		JWTSecret:  os.Getenv("JWT_SECRET"),
		APISecret:  os.Getenv("API_MASTER_SECRET"),
		AdminUser:  Getenv("ADMIN_USERNAME", "admin"),
		AdminPass:  Getenv("ADMIN_PASSWORD", "admin123"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		Kafka:      SplitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic: Getenv("KAFKA_TOPIC", "labour-alerts"),
		CORS:       SplitCSV(Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		Location:   loc,
		Cron: Schedules{
			Upcoming: Getenv("CRON_UPCOMING", DefaultSchedules.Upcoming),
			Shortage: Getenv("CRON_SHORTAGE", DefaultSchedules.Shortage),
			Overtime: Getenv("CRON_OVERTIME", DefaultSchedules.Overtime),
		},
		LogLevel:  Getenv("LOG_LEVEL", "info"),
		LogFormat: Getenv("LOG_FORMAT", "console"),
	}, nil
}

// SplitCSV splits a comma separated list, dropping blanks
func SplitCSV(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
