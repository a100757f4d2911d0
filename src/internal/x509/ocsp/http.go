// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds a single responder round trip.
const DefaultTimeout = 10 * time.Second

// Transport sends OCSP HTTP requests. *http.Client satisfies it.
//
// Implementations must honor the request context so that a cancelled check
// does not leave a call in flight.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPConfig holds HTTP client configuration for responder requests.
type HTTPConfig struct {
	Timeout   time.Duration // Per-request timeout
	Version   string        // Application version for User-Agent
	UserAgent string        // Custom User-Agent string, if empty will be constructed from Version

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPConfig creates a new HTTP configuration with [DefaultTimeout]
// and the provided application version.
//
// Parameters:
//   - version: Application version string
//
// Returns:
//   - *HTTPConfig: New HTTP configuration
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout: DefaultTimeout,
		Version: version,
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("X.509-Chain-Verifier/%s (+https://github.com/H0llyW00dzZ/x509-chain-verifier)", c.Version)
}

// Client returns an HTTP client configured with the current timeout.
//
// The client is reused while Timeout stays the same. A changed Timeout yields
// a new client on the same transport; clients already handed out are never
// modified, so requests in flight keep their own deadline.
//
// Returns:
//   - *http.Client: Configured HTTP client
//
// Thread Safety: Safe for concurrent use.
func (c *HTTPConfig) Client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.client == nil:
		c.client = &http.Client{Timeout: c.Timeout}
	case c.client.Timeout != c.Timeout:
		c.client = &http.Client{Timeout: c.Timeout, Transport: c.client.Transport}
	}

	return c.client
}

func (c *HTTPConfig) timeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
