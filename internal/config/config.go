package config

import (
	"errors"
	"fmt"
	"os"

	"showbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Reclaimer  ReclaimerConfig  `yaml:"reclaimer"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Flags      FlagsConfig      `yaml:"flags"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port                  int             `yaml:"port"`
	RequestTimeoutSeconds int             `yaml:"request_timeout_seconds"`
	RateLimit             RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address            string `yaml:"address"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	PoolSize           int    `yaml:"pool_size"`
	SnapshotTTLSeconds int    `yaml:"snapshot_ttl_seconds"`
}

type ReclaimerConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	TTLMinutes      int `yaml:"ttl_minutes"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type FlagsConfig struct {
	DefaultModel    string `yaml:"default_model"`
	EnvOverride     string `yaml:"env_override"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type TelegramConfig struct {
	BotToken      string `yaml:"bot_token"`
	ManagerChatID int64  `yaml:"manager_chat_id"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен; переменные могут прийти из окружения
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Подстановка переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Reclaimer.IntervalSeconds <= 0 {
		return errors.New("reclaimer interval must be positive")
	}
	if c.Reclaimer.TTLMinutes <= 0 {
		return errors.New("reclaimer ttl must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ManagerChatID == 0 {
		return errors.New("telegram manager_chat_id is required when bot_token is set")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "showbook"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RequestTimeoutSeconds == 0 {
		c.HTTP.RequestTimeoutSeconds = models.DefaultRequestTimeoutSeconds
	}
	if c.Reclaimer.IntervalSeconds == 0 {
		c.Reclaimer.IntervalSeconds = models.DefaultReclaimIntervalSeconds
	}
	if c.Reclaimer.TTLMinutes == 0 {
		c.Reclaimer.TTLMinutes = models.DefaultBookingTTLMinutes
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Redis.SnapshotTTLSeconds == 0 {
		c.Redis.SnapshotTTLSeconds = models.DefaultSnapshotTTL
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Flags.DefaultModel == "" {
		c.Flags.DefaultModel = models.DefaultModel
	}
	if c.Flags.EnvOverride == "" {
		c.Flags.EnvOverride = "AI_MODEL"
	}
	if c.Flags.CacheTTLSeconds == 0 {
		c.Flags.CacheTTLSeconds = models.DefaultFlagCacheTTL
	}
}
