package config

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{"nil config", nil, nil},
		{"empty config", &Config{}, nil},
		{"https server", &Config{Server: "https://travel.example.com"}, nil},
		{"server without scheme", &Config{Server: "localhost:5000"}, ErrInvalidServer},
		{"ftp server", &Config{Server: "ftp://host"}, ErrInvalidServer},
		{"server without host", &Config{Server: "http://"}, ErrInvalidServer},
		{"warning level", &Config{LogLevel: "warning"}, nil},
		{"unknown level", &Config{LogLevel: "trace"}, ErrInvalidLogLevel},
		{"negative timeout", &Config{RequestTimeout: Duration{-time.Second}}, ErrInvalidTimeout},
		{"negative burst", &Config{RateLimit: RateLimitConfig{Burst: -1}}, ErrInvalidBurst},
		{"metrics addr", &Config{Metrics: MetricsConfig{Addr: ":9464"}}, nil},
		{"metrics addr without port", &Config{Metrics: MetricsConfig{Addr: "localhost"}}, ErrInvalidAddr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{Server: "nope", LogLevel: "loud"}
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidServer) || !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Validate() = %v, want both server and log-level errors", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatal("expected a *ValidationError")
	}
	if verr.Field != "server" || verr.Value != "nope" {
		t.Errorf("first error = %+v", verr)
	}
}
