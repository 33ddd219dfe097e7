package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	// Twitter API v2 credentials (OAuth 1.0a). All four are required.
	TwitterConsumerKey    string `mapstructure:"TWITTER_CONSUMER_KEY"`
	TwitterConsumerSecret string `mapstructure:"TWITTER_CONSUMER_SECRET"`
	TwitterAccessToken    string `mapstructure:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessSecret   string `mapstructure:"TWITTER_ACCESS_SECRET"`

	// TwitterAPIBaseURL overrides the API endpoint, mainly for tests.
	TwitterAPIBaseURL string `mapstructure:"TWITTER_API_BASE_URL"`

	// Content store paths.
	StarterPacksCSV string `mapstructure:"STARTER_PACKS_CSV"`
	FeedsCSV        string `mapstructure:"FEEDS_CSV"`
	ReasonsFile     string `mapstructure:"REASONS_FILE"`

	// HistoryDBPath is where the post-history BadgerDB lives.
	HistoryDBPath string `mapstructure:"HISTORY_DB_PATH"`

	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Optional failure alerting. The notifier is disabled when either value
	// is unset.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `mapstructure:"TELEGRAM_CHAT_ID"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err = viper.ReadInConfig()
	if err != nil {
		// A missing config file is fine as long as the environment carries
		// the required values.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// --- Validation and Defaults ---
	for key, value := range map[string]string{
		"TWITTER_CONSUMER_KEY":    config.TwitterConsumerKey,
		"TWITTER_CONSUMER_SECRET": config.TwitterConsumerSecret,
		"TWITTER_ACCESS_TOKEN":    config.TwitterAccessToken,
		"TWITTER_ACCESS_SECRET":   config.TwitterAccessSecret,
	} {
		if value == "" {
			return Config{}, fmt.Errorf("%s is not set", key)
		}
	}
	if config.StarterPacksCSV == "" {
		config.StarterPacksCSV = "./content/starter_packs.csv"
	}
	if config.FeedsCSV == "" {
		config.FeedsCSV = "./content/feeds.csv"
	}
	if config.ReasonsFile == "" {
		config.ReasonsFile = "./content/bluesky_reasons.txt"
	}
	if config.HistoryDBPath == "" {
		config.HistoryDBPath = "./history_data"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return config, nil
}
