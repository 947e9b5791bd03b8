package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Shop struct {
		Timezone              string `yaml:"timezone"`
		NotifyPosition        int    `yaml:"notify_position"`
		StatusCacheTTLSeconds int    `yaml:"status_cache_ttl_seconds"`
	} `yaml:"shop"`

	Notifications struct {
		Enabled  bool   `yaml:"enabled"`
		Provider string `yaml:"provider"` // "resend" or "telegram"
		Resend   struct {
			APIKey string `yaml:"api_key"`
			From   string `yaml:"from"`
		} `yaml:"resend"`
		Telegram struct {
			BotToken string `yaml:"bot_token"`
		} `yaml:"telegram"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		RateBurst     int     `yaml:"rate_burst"`
	} `yaml:"notifications"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/barber.db"
	}
	if cfg.Shop.Timezone == "" {
		cfg.Shop.Timezone = "America/New_York"
	}
	if cfg.Shop.NotifyPosition == 0 {
		cfg.Shop.NotifyPosition = 3
	}
	if cfg.Notifications.RatePerSecond == 0 {
		cfg.Notifications.RatePerSecond = 1
	}
	if cfg.Notifications.RateBurst == 0 {
		cfg.Notifications.RateBurst = 5
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// StatusCacheTTL returns the schedule-status cache TTL; zero disables the
// cache.
func (c *Config) StatusCacheTTL() time.Duration {
	if c.Shop.StatusCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Shop.StatusCacheTTLSeconds) * time.Second
}
