package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/tessro/roam/internal/logging"
)

// Validation errors.
var (
	ErrInvalidServer   = errors.New("server must be an http or https URL with a host")
	ErrInvalidLogLevel = errors.New("log-level must be debug, info, warn, or error")
	ErrInvalidTimeout  = errors.New("request-timeout must be positive")
	ErrInvalidBurst    = errors.New("rate-limit burst must not be negative")
	ErrInvalidAddr     = errors.New("metrics addr must be host:port")
	ErrUnknownKey      = errors.New("unknown config key")
)

// ValidationError wraps a validation error with the offending field.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error

	if c.Server != "" {
		if err := ValidateServer(c.Server); err != nil {
			errs = append(errs, err)
		}
	}
	if c.LogLevel != "" && !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, &ValidationError{
			Field:   "log-level",
			Value:   c.LogLevel,
			Message: "unknown level",
			Err:     ErrInvalidLogLevel,
		})
	}
	if c.RequestTimeout.Duration < 0 {
		errs = append(errs, &ValidationError{
			Field:   "request-timeout",
			Value:   c.RequestTimeout.String(),
			Message: "must be positive",
			Err:     ErrInvalidTimeout,
		})
	}
	if c.RateLimit.Burst < 0 {
		errs = append(errs, &ValidationError{
			Field:   "rate-limit.burst",
			Value:   fmt.Sprint(c.RateLimit.Burst),
			Message: "must not be negative",
			Err:     ErrInvalidBurst,
		})
	}
	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "metrics.addr",
				Value:   c.Metrics.Addr,
				Message: "must be host:port",
				Err:     ErrInvalidAddr,
			})
		}
	}
	return errors.Join(errs...)
}

// ValidateServer checks that s is an absolute http(s) URL.
func ValidateServer(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   "server",
			Value:   s,
			Message: "must be an http or https URL",
			Err:     ErrInvalidServer,
		}
	}
	return nil
}
