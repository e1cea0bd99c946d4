// Package httpclient builds the tuned http.Client shared by the upstream
// shims (tracker and sheet service).
package httpclient

import (
	"net/http"
	"time"
)

// Defaults for outbound connections.
const (
	DefaultTimeout               = 30 * time.Second
	DefaultMaxIdleConns          = 100
	DefaultMaxIdleConnsPerHost   = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
)

// New creates an HTTP client with sane pooling defaults and the given
// overall request timeout. Every upstream call is bounded by this timeout;
// a hung source call must never hang a request indefinitely.
func New(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:          DefaultMaxIdleConns,
			MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
			TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		},
	}
}
