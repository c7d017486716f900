package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(lookupFrom(nil))

	assert.Equal(t, "volley.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ro", cfg.Locale)
	assert.Equal(t, 3, cfg.DefaultFormat)
	assert.Empty(t, cfg.AdminPasswordHash)
	assert.False(t, cfg.Slack.Enabled())
	assert.Empty(t, cfg.ProjectID)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := FromEnv(lookupFrom(map[string]string{
		"DB_NAME":              ":memory:",
		"PORT":                 "9000",
		"DEFAULT_MATCH_FORMAT": "5",
		"SLACK_BOT_TOKEN":      "xoxb-1",
		"SLACK_CHANNEL_ID":     "C1",
		"TURSO_PRIMARY_URL":    "libsql://volley.turso.io",
		"GCP_PROJECT":          "volley",
	}))

	assert.Equal(t, ":memory:", cfg.DBName)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5, cfg.DefaultFormat)
	assert.True(t, cfg.Slack.Enabled())
	assert.Equal(t, "libsql://volley.turso.io", cfg.Turso.PrimaryURL)
	assert.Equal(t, "volley", cfg.ProjectID)
}

func TestFromEnvRejectsUnknownFormat(t *testing.T) {
	cfg := FromEnv(lookupFrom(map[string]string{"DEFAULT_MATCH_FORMAT": "4"}))
	assert.Equal(t, 3, cfg.DefaultFormat)
}
