package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads with all required vars",
			envVars: map[string]string{
				"PORT":            "8080",
				"ENV":             "production",
				"DATABASE_URL":    "postgres://localhost/test",
				"API_KEY_HASH":    "abc123",
				"FACE_PROVIDER":   "deepface",
				"MATCH_THRESHOLD": "0.7",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.DatabaseURL == "postgres://localhost/test" &&
					c.APIKeyHash == "abc123" &&
					c.FaceProvider == "deepface" &&
					c.MatchThreshold == 0.7
			},
		},
		{
			name: "uses defaults when optional vars missing",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
				"API_KEY_HASH": "abc123",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 3000 &&
					c.Environment == "development" &&
					c.FaceProvider == "mock" &&
					c.MatchThreshold == 0.6 &&
					c.WindowMinutes == 20 &&
					c.MaxSessionMinutes == 120 &&
					c.LateAfterMinutes == 10
			},
		},
		{
			name: "fails when DATABASE_URL missing",
			envVars: map[string]string{
				"API_KEY_HASH": "abc123",
			},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails when API_KEY_HASH missing",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
			},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails when threshold out of range",
			envVars: map[string]string{
				"DATABASE_URL":    "postgres://localhost/test",
				"API_KEY_HASH":    "abc123",
				"MATCH_THRESHOLD": "1.5",
			},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails when window exceeds max session",
			envVars: map[string]string{
				"DATABASE_URL":        "postgres://localhost/test",
				"API_KEY_HASH":        "abc123",
				"WINDOW_MINUTES":      "180",
				"MAX_SESSION_MINUTES": "120",
			},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails when webhook url set without secret",
			envVars: map[string]string{
				"DATABASE_URL":      "postgres://localhost/test",
				"API_KEY_HASH":      "abc123",
				"EVENT_WEBHOOK_URL": "https://example.com/hook",
			},
			wantErr: true,
			check:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}
