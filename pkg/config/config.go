package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Storage StorageConfig
	Admin   AdminConfig
	Log     LogConfig
}

type StorageConfig struct {
	DataDir      string
	BikesFile    string
	BookingsFile string
	HistoryFile  string
	ExportFile   string
}

type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

type LogConfig struct {
	Level  slog.Level
	Format string
}

// NewLogger builds the process logger. Console output owns stdout, so callers
// normally pass stderr.
func (lc LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.Level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func NewConfig() (*Config, error) {
	logCfg, err := newLogConfig()
	if err != nil {
		return nil, fmt.Errorf("log config error: %w", err)
	}

	return &Config{
		Storage: newStorageConfig(),
		Admin:   newAdminConfig(),
		Log:     logCfg,
	}, nil
}

func newStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:      getEnvOrDefault("PEDALHUB_DATA_DIR", "."),
		BikesFile:    getEnvOrDefault("PEDALHUB_BIKES_FILE", "bike_inventory.json"),
		BookingsFile: getEnvOrDefault("PEDALHUB_BOOKINGS_FILE", "bookings.json"),
		HistoryFile:  getEnvOrDefault("PEDALHUB_HISTORY_FILE", "rental_history.json"),
		ExportFile:   getEnvOrDefault("PEDALHUB_EXPORT_FILE", "rental_history.xlsx"),
	}
}

func newAdminConfig() AdminConfig {
	return AdminConfig{
		Username:     getEnvOrDefault("ADMIN_USERNAME", "admin"),
		Password:     getEnvOrDefault("ADMIN_PASSWORD", "youradmin123"),
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
}

func newLogConfig() (LogConfig, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return LogConfig{}, fmt.Errorf("log level parse error: %w", err)
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text"))
	if format != "text" && format != "json" {
		return LogConfig{}, fmt.Errorf("unsupported log format %q", format)
	}

	return LogConfig{Level: level, Format: format}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
