package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls retry behaviour for a Caller.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// StatusError reports a non-2xx response from an upstream service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// permanentError wraps failures that retrying cannot fix (client errors).
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Caller executes GET requests against an upstream service with retries,
// exponential backoff, and a circuit breaker. Rate limiting (429) and 5xx
// responses are retried; other non-2xx responses fail immediately.
type Caller struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	backoff BackoffConfig
}

// NewCaller creates a Caller with its own circuit breaker named after the
// upstream service.
func NewCaller(client *http.Client, name string, backoff BackoffConfig) *Caller {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Caller{
		client:  client,
		circuit: cb,
		backoff: backoff,
	}
}

// GetJSON fetches rawURL and decodes the JSON response body into out.
func (c *Caller) GetJSON(ctx context.Context, rawURL string, out any) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, &StatusError{Code: resp.StatusCode}
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, permanentError{err: &StatusError{Code: resp.StatusCode}}
			}

			return io.ReadAll(resp.Body)
		})
		if err == nil {
			return json.Unmarshal(result.([]byte), out)
		}

		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		// If the circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return err
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return lastErr
		}

		delay := c.backoff.InitialInterval << attempt
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
