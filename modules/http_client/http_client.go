// Package http_client owns the resty client shared by the HTTP-based tasks
// so they reuse connections across executions.
package http_client

import (
	"sync"
	"time"

	"resty.dev/v3"
)

// DefaultTimeout bounds every request made through the shared client.
const DefaultTimeout = 30 * time.Second

var (
	sharedOnce sync.Once
	shared     *resty.Client
)

// Shared returns the process-wide client, creating it on first use.
func Shared() *resty.Client {
	sharedOnce.Do(func() {
		shared = New(DefaultTimeout)
	})
	return shared
}

// New creates a client with the given request timeout.
func New(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "stagegrid")
}
