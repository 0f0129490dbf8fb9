// Package httpclient provides a centralized HTTP client factory with unified configuration.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config holds configuration options for creating HTTP clients.
type Config struct {
	// Timeout specifies a time limit for requests made by the client.
	// It covers one whole attempt, including reading a full streamed body.
	Timeout time.Duration

	// DialTimeout is the maximum amount of time a dial will wait for a connect to complete.
	DialTimeout time.Duration

	// KeepAlive specifies the interval between keep-alive probes for an active connection.
	KeepAlive time.Duration

	// MaxIdleConns controls the maximum number of idle (keep-alive) connections.
	MaxIdleConns int

	// IdleConnTimeout is how long an idle connection remains idle before closing itself.
	IdleConnTimeout time.Duration

	// TLSHandshakeTimeout specifies the maximum amount of time to wait for a TLS handshake.
	TLSHandshakeTimeout time.Duration
}

// DefaultConfig returns a Config with defaults sized for a single-upstream API client.
func DefaultConfig(timeout time.Duration) Config {
	return Config{
		Timeout:             timeout,
		DialTimeout:         30 * time.Second,
		KeepAlive:           30 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// New creates an HTTP client from the given configuration.
func New(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
