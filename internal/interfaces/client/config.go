package client

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds the settings for talking to a bill payment API
type Config struct {
	// BaseURL is the API root including the version, e.g. http://localhost:8080/api/v1
	BaseURL string
	// UserID is sent as X-User-ID when set
	UserID *uuid.UUID
	// Timeout bounds each request; zero means DefaultTimeout
	Timeout time.Duration
}

// DefaultTimeout is used when Config.Timeout is zero
const DefaultTimeout = 30 * time.Second

// Errors for client configuration
var (
	ErrMissingBaseURL = errors.New("billpay client: base URL is required")
	ErrInvalidBaseURL = errors.New("billpay client: base URL must be an absolute http(s) URL")
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	return nil
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
