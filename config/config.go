package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string  `mapstructure:"PORT"`
	DB_URL           string  `mapstructure:"DB_URL"`
	JWTSecret        string  `mapstructure:"JWT_SECRET"`
	APIKey           string  `mapstructure:"API_KEY"`
	TelegramBotToken string  `mapstructure:"TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64   `mapstructure:"ADMIN_CHAT_ID"`
	StarsPerRub      float64 `mapstructure:"STARS_PER_RUB"`
	CardBIN          string  `mapstructure:"CARD_BIN"`
	MaxCardsPerUser  int     `mapstructure:"MAX_CARDS_PER_USER"`

	SMTPHost  string `mapstructure:"SMTP_HOST"`
	SMTPPort  string `mapstructure:"SMTP_PORT"`
	SMTPUser  string `mapstructure:"SMTP_USER"`
	SMTPPass  string `mapstructure:"SMTP_PASS"`
	EmailFrom string `mapstructure:"EMAIL_FROM"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("ошибка получения абсолютного пути: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STARS_PER_RUB", 2.0)
	viper.SetDefault("CARD_BIN", "220070")
	viper.SetDefault("MAX_CARDS_PER_USER", 3)

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("ошибка преобразования конфига: %w", err)
	}

	if config.DB_URL == "" {
		return config, fmt.Errorf("DB_URL обязателен")
	}
	if config.JWTSecret == "" {
		return config, fmt.Errorf("JWT_SECRET обязателен")
	}
	if config.TelegramBotToken == "" {
		return config, fmt.Errorf("TELEGRAM_BOT_TOKEN обязателен")
	}

	return config, nil
}
