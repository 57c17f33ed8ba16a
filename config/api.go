package config

// APIConfig sets the HTTP server of the serve command.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token enables bearer authentication on /api routes when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
