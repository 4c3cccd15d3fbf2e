// Package sandbox forwards CQL code to the remote execution service
// and returns its named result list unchanged. The service owns all
// evaluation semantics; this client only carries the code over and
// the results back.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// Result is one named evaluation outcome from the execution service.
// Error entries carry a location in the submitted code.
type Result struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Result   string `json:"result,omitempty"`
	Type     string `json:"resultType,omitempty"`
	Error    string `json:"error,omitempty"`
}

// executeRequest is the wire payload the execution service accepts
type executeRequest struct {
	Code string `json:"code"`
}

// Config holds configuration for the sandbox client
type Config struct {
	BaseURL string
	Timeout time.Duration // default: 30s
}

// Client calls the remote CQL execution service. Calls go through a
// circuit breaker and a bounded retry so a struggling sandbox degrades
// to fast ErrSandboxUnavailable failures instead of piling up slow ones.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	circuitBreaker circuitbreaker.CircuitBreaker[[]Result]
	retrier        retry.Retry[[]Result]
	logger         *slog.Logger
}

// NewClient creates a sandbox client for the given service URL
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   5,
				ForceAttemptHTTP2:     true,
			},
		},
	}

	c.circuitBreaker = circuitbreaker.New[[]Result](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			if c.logger != nil {
				c.logger.Warn("sandbox circuit breaker state change",
					"from", from.String(),
					"to", to.String())
			}
		},
	})

	c.retrier = retry.New[[]Result](retry.Config{
		MaxAttempts:   2,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryableExecuteError,
	})

	return c
}

// Execute submits a code string for evaluation and returns the
// service's result list. Transport and service failures surface as
// ErrSandboxUnavailable; error entries inside a successful response
// are results, not failures.
func (c *Client) Execute(ctx context.Context, code string) ([]Result, error) {
	results, err := c.circuitBreaker.Execute(ctx, func(ctx context.Context) ([]Result, error) {
		return c.retrier.Do(ctx, func(ctx context.Context) ([]Result, error) {
			return c.execute(ctx, code)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSandboxUnavailable, err)
	}
	return results, nil
}

func (c *Client) execute(ctx context.Context, code string) ([]Result, error) {
	payload, err := json.Marshal(executeRequest{Code: code})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sandbox error (status %d): %s", resp.StatusCode, string(body))
	}

	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return results, nil
}

func isRetryableExecuteError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	for _, pattern := range []string{"status 429", "status 502", "status 503", "status 504"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout")
}
