package config

import "github.com/caarlos0/env/v11"

type Config struct {
	Port   string `env:"PORT"    envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"khabar.sqlite"`

	NewsAPIKey string `env:"NEWS_API_KEY"`

	// Both AI credentials are optional. An absent key disables that
	// cascade stage; the extractive fallback needs neither.
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	HuggingFaceAPIKey string `env:"HUGGINGFACE_API_KEY"`

	FCMServerKey string `env:"FCM_SERVER_KEY"`
	AdminAPIKey  string `env:"ADMIN_API_KEY"`

	AudioDir string `env:"AUDIO_DIR" envDefault:"static/audio"`

	// RSSFeeds lists supplementary sources as comma-separated
	// "url|language|category" triples.
	RSSFeeds []string `env:"RSS_FEEDS"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
