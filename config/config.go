package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissing is returned by Validate when a required environment variable is
// not set.
var ErrMissing = errors.New("required environment variable not set")

// Config holds the settings read from the environment
type Config struct {
	Port     string
	AppName  string
	LogLevel string

	DatabaseURL   string
	DurableEvents bool

	LineChannelAccessToken string
	LineChannelSecret      string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Load reads the configuration from the environment, after applying a .env
// file from the working directory when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:     envOr("PORT", "8080"),
		AppName:  envOr("APP_NAME", "travel-bot"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DurableEvents: envBool("DURABLE_EVENTS", true),

		LineChannelAccessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		LineChannelSecret:      os.Getenv("LINE_CHANNEL_SECRET"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string
	for _, req := range []struct {
		key, value string
	}{
		{"LINE_CHANNEL_ACCESS_TOKEN", c.LineChannelAccessToken},
		{"LINE_CHANNEL_SECRET", c.LineChannelSecret},
		{"OPENAI_API_KEY", c.OpenAIAPIKey},
		{"DATABASE_URL", c.DatabaseURL},
	} {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, req.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
