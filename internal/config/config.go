// Package config provides configuration loading and validation for the
// MoodMeter application. Values come from defaults, an optional YAML file,
// and BOT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components: logging,
// Telegram transport, storage, the sentiment classifier, alerting, scheduled
// tasks, and the dashboard API.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Alert      AlertConfig      `mapstructure:"alert"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	// DSN is a file path for sqlite or a connection string for postgres.
	DSN string `mapstructure:"dsn" validate:"required"`
}

type ClassifierConfig struct {
	Provider          string        `mapstructure:"provider" validate:"oneof=gemini openai"`
	APIKey            string        `mapstructure:"api_key" validate:"required"`
	Model             string        `mapstructure:"model" validate:"required"`
	Temperature       float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"min=1s,max=10m"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
}

type AlertConfig struct {
	// Window is the rolling slice of recent messages evaluated per scan.
	Window time.Duration `mapstructure:"window" validate:"min=1m,max=24h"`
}

// TaskConfig enables and schedules one background task. Schedule is a
// standard five-field cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

type DashboardConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"min=1m,max=168h"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" validate:"min=1m,max=1h"`
}

// LoadConfig reads configuration from the given YAML file (optional),
// applies BOT_* environment variable overrides, and validates the result.
// A missing Telegram token or classifier API key is fatal here, before any
// component starts.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// Config file not found is okay, defaults plus env apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Dashboard.Enabled && cfg.Dashboard.JWTSecret == "" {
		return nil, errors.New("config validation failed: dashboard.jwt_secret is required when the dashboard is enabled")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	// Secrets default to empty so viper resolves their env overrides during
	// Unmarshal; validation rejects them if they stay empty.
	v.SetDefault("telegram.token", "")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("dashboard.jwt_secret", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "moodmeter.db")

	v.SetDefault("classifier.provider", "gemini")
	v.SetDefault("classifier.model", "gemini-2.0-flash")
	v.SetDefault("classifier.temperature", 0.0)
	v.SetDefault("classifier.timeout", 30*time.Second)
	v.SetDefault("classifier.max_retries", 2)
	v.SetDefault("classifier.retry_delay_seconds", 5)

	v.SetDefault("alert.window", time.Hour)

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"alert_scan":      {Enabled: true, Schedule: "0 * * * *"},
		"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
	})

	v.SetDefault("dashboard.enabled", true)
	v.SetDefault("dashboard.addr", ":8080")
	v.SetDefault("dashboard.token_ttl", 12*time.Hour)
	v.SetDefault("dashboard.cache_ttl", 5*time.Minute)
}
