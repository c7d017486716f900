package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// Optional integrations stay disabled when their variables are unset.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which behaves like os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) Config {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	format, err := strconv.Atoi(getEnv("DEFAULT_MATCH_FORMAT", "3"))
	if err != nil || (format != 3 && format != 5) {
		log.Warn("Invalid DEFAULT_MATCH_FORMAT, using best of 3", "value", getEnv("DEFAULT_MATCH_FORMAT", ""))
		format = 3
	}

	return Config{
		DBName:            getEnv("DB_NAME", "volley.db"),
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Locale:            getEnv("STANDINGS_LOCALE", "ro"),
		DefaultFormat:     format,
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
	}
}
