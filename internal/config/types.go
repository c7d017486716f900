package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	Port          string
	LogLevel      string
	Locale        string
	DefaultFormat int
	// AdminPasswordHash is a bcrypt hash. Empty leaves the API read-only.
	AdminPasswordHash string
	Slack             SlackConfig
	Turso             TursoConfig
	ProjectID         string
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// Enabled reports whether Slack notifications can be sent.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
