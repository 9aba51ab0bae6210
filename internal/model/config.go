package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DatabaseConfig holds settings for the local SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AIConfig holds settings for the AI assistant integration.
type AIConfig struct {
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// CalendarConfig holds settings for the external calendar integration.
type CalendarConfig struct {
	// CalendarID is the target calendar ("primary" by default).
	CalendarID string `mapstructure:"calendar_id" yaml:"calendar_id"`

	// TimeZone is the IANA time zone name used for event start/end.
	TimeZone string `mapstructure:"time_zone" yaml:"time_zone"`

	// EventDurationMin is the default event length in minutes.
	EventDurationMin int `mapstructure:"event_duration_min" yaml:"event_duration_min"`
}

// DigestConfig holds settings for the upcoming-task email digest.
type DigestConfig struct {
	Enabled  bool     `mapstructure:"enabled" yaml:"enabled"`
	From     string   `mapstructure:"from" yaml:"from"`
	To       []string `mapstructure:"to" yaml:"to"`
	SMTPAddr string   `mapstructure:"smtp_addr" yaml:"smtp_addr"`
}

// AlertConfig holds settings for the background alert scheduler.
type AlertConfig struct {
	SweepIntervalSec int `mapstructure:"sweep_interval_sec" yaml:"sweep_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Calendar CalendarConfig `mapstructure:"calendar" yaml:"calendar"`
	Digest   DigestConfig   `mapstructure:"digest" yaml:"digest"`
	Alerts   AlertConfig    `mapstructure:"alerts" yaml:"alerts"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/agencydesk/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "agencydesk", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: filepath.Join(".", "agencydesk.db")},
		AI: AIConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Calendar: CalendarConfig{
			CalendarID:       "primary",
			TimeZone:         "Europe/Madrid",
			EventDurationMin: 30,
		},
		Alerts:   AlertConfig{SweepIntervalSec: 300},
		LogLevel: "info",
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.path", filepath.Join(".", "agencydesk.db"))
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("calendar.time_zone", "Europe/Madrid")
	v.SetDefault("calendar.event_duration_min", 30)
	v.SetDefault("alerts.sweep_interval_sec", 300)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("database", cfg.Database)
	v.Set("ai", cfg.AI)
	v.Set("calendar", cfg.Calendar)
	v.Set("digest", cfg.Digest)
	v.Set("alerts", cfg.Alerts)
	v.Set("log_level", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
