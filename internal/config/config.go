package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Provider
	FaceProvider string `envconfig:"FACE_PROVIDER" default:"mock"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Recognition
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.6"`

	// Sessões: janela de reconhecimento automático, duração máxima e
	// tolerância antes de marcar como atrasado (tudo em minutos)
	WindowMinutes     int `envconfig:"WINDOW_MINUTES" default:"20"`
	MaxSessionMinutes int `envconfig:"MAX_SESSION_MINUTES" default:"120"`
	LateAfterMinutes  int `envconfig:"LATE_AFTER_MINUTES" default:"10"`

	// Security
	APIKeyHash string `envconfig:"API_KEY_HASH" required:"true"`

	// Eventos
	EventWebhookURL    string `envconfig:"EVENT_WEBHOOK_URL" default:""`
	EventWebhookSecret string `envconfig:"EVENT_WEBHOOK_SECRET" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejeita combinações que deixariam o serviço num estado inútil
func (c *Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be between 0 and 1, got %v", c.MatchThreshold)
	}
	if c.WindowMinutes <= 0 {
		return fmt.Errorf("WINDOW_MINUTES must be positive, got %d", c.WindowMinutes)
	}
	if c.WindowMinutes > c.MaxSessionMinutes {
		return fmt.Errorf("WINDOW_MINUTES (%d) cannot exceed MAX_SESSION_MINUTES (%d)", c.WindowMinutes, c.MaxSessionMinutes)
	}
	if c.EventWebhookURL != "" && c.EventWebhookSecret == "" {
		return fmt.Errorf("EVENT_WEBHOOK_SECRET is required when EVENT_WEBHOOK_URL is set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DefaultWindow returns the auto recognition window as a duration
func (c *Config) DefaultWindow() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}
