package config

// SentryConfig defines settings for Sentry error monitoring. An empty DSN
// disables it.
type SentryConfig struct {
	DSN              string            `json:"dsn"`
	Environment      string            `json:"environment"`
	TracesSampleRate float64           `json:"traces_sample_rate"`
	Release          string            `json:"release"`
	ServerName       string            `json:"server_name"`
	Tags             map[string]string `json:"tags"`
}
