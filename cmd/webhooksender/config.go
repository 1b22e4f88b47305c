package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fr0stylo/webhookd/internal/webhooks/signature"
)

type config struct {
	BaseURL  string `mapstructure:"base_url"`
	Provider string `mapstructure:"provider"`
	Topic    string `mapstructure:"topic"`
	Secret   string `mapstructure:"secret"`
	Interval string `mapstructure:"interval"`
	Count    int    `mapstructure:"count"`
	// InvalidJSON sends a correctly signed body that is not JSON, exercising dead-lettering.
	InvalidJSON bool `mapstructure:"invalid_json"`
	// ReplayEvery resends the previous delivery id on every Nth send. Zero disables it.
	ReplayEvery int `mapstructure:"replay_every"`

	interval time.Duration
}

func loadConfig(path string) (config, error) {
	if strings.TrimSpace(path) == "" {
		return config{}, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("topic", "orders")
	v.SetDefault("interval", "5s")
	v.SetDefault("count", 0)
	if err := v.ReadInConfig(); err != nil {
		return config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg.normalize()
}

func (cfg config) normalize() (config, error) {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Topic = strings.ToLower(strings.TrimSpace(cfg.Topic))
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.Interval = strings.TrimSpace(cfg.Interval)

	if cfg.BaseURL == "" || cfg.Provider == "" || cfg.Secret == "" {
		return config{}, fmt.Errorf("config must include base_url, provider, secret")
	}
	if _, ok := signature.Lookup(cfg.Provider); !ok {
		return config{}, fmt.Errorf("unknown provider %q (want one of %s)", cfg.Provider, strings.Join(signature.Keys(), ", "))
	}
	parsed, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return config{}, fmt.Errorf("invalid interval duration: %w", err)
	}
	if parsed <= 0 {
		return config{}, fmt.Errorf("interval must be positive")
	}
	if cfg.Count < 0 || cfg.ReplayEvery < 0 {
		return config{}, fmt.Errorf("count and replay_every must not be negative")
	}
	cfg.interval = parsed
	return cfg, nil
}
