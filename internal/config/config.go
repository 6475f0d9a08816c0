package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all server settings, loaded from the environment.
type Config struct {
	Host        string        `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port        int           `envconfig:"HTTP_PORT" default:"3000"`
	DatabaseDSN string        `envconfig:"DATABASE_DSN" default:"data/app.db"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`

	// SendBuffer is the per-connection outbound event buffer; a subscriber
	// that falls this far behind is dropped rather than allowed to block
	// the fan-out path.
	SendBuffer int `envconfig:"WS_SEND_BUFFER" default:"64"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
