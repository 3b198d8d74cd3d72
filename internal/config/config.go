// Package config содержит логику чтения конфигурации сервиса оформления заказов.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress       string        `env:"RUN_ADDRESS"`
	DatabaseURI      string        `env:"DATABASE_URI"`
	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `env:"TELEGRAM_ADMIN_CHAT_ID"`
	SessionSecret    string        `env:"SECRET_KEY"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envBotToken := cfg.TelegramBotToken
	envChatID := cfg.TelegramChatID
	envSecret := cfg.SessionSecret
	envNotifyTimeout := cfg.NotifyTimeout

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, empty selects the in-memory store")
	flag.StringVar(&cfg.TelegramBotToken, "t", "", "telegram bot token")
	flag.StringVar(&cfg.TelegramChatID, "c", "", "telegram admin chat id")
	flag.StringVar(&cfg.SessionSecret, "s", "", "secret key for session cookies")
	flag.DurationVar(&cfg.NotifyTimeout, "n", 5*time.Second, "timeout for a single outbound notification")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envBotToken != "" {
		cfg.TelegramBotToken = envBotToken
	}
	if envChatID != "" {
		cfg.TelegramChatID = envChatID
	}
	if envSecret != "" {
		cfg.SessionSecret = envSecret
	}
	if envNotifyTimeout != 0 {
		cfg.NotifyTimeout = envNotifyTimeout
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}

	return cfg, nil
}
