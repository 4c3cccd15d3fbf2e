package source

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientSource wraps a Source with retry and circuit breaker patterns
// from fortify. Retry smooths over transient catalog failures; the
// breaker prevents hammering a source that is down, letting cached
// snapshots carry the service until it recovers.
type ResilientSource struct {
	source         Source
	circuitBreaker circuitbreaker.CircuitBreaker[[]domain.Exercise]
	retrier        retry.Retry[[]domain.Exercise]
	logger         *slog.Logger
}

// NewResilientSource wraps a source with resilience patterns
func NewResilientSource(src Source, logger *slog.Logger) *ResilientSource {
	rs := &ResilientSource{
		source: src,
		logger: logger,
	}

	rs.circuitBreaker = circuitbreaker.New[[]domain.Exercise](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			if rs.logger != nil {
				rs.logger.Warn("exercise source circuit breaker state change",
					"from", from.String(),
					"to", to.String())
			}
		},
	})

	rs.retrier = retry.New[[]domain.Exercise](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable: func(err error) bool {
			return isRetryableHTTPError(err)
		},
	})

	return rs
}

// Fetch retrieves the collection through the breaker and retrier
func (s *ResilientSource) Fetch(ctx context.Context) ([]domain.Exercise, error) {
	return s.circuitBreaker.Execute(ctx, func(ctx context.Context) ([]domain.Exercise, error) {
		return s.retrier.Do(ctx, func(ctx context.Context) ([]domain.Exercise, error) {
			return s.source.Fetch(ctx)
		})
	})
}

// isRetryableHTTPError checks if an error is retryable based on HTTP semantics
func isRetryableHTTPError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	retryable := map[string]int{
		"status 429": http.StatusTooManyRequests,
		"status 500": http.StatusInternalServerError,
		"status 502": http.StatusBadGateway,
		"status 503": http.StatusServiceUnavailable,
		"status 504": http.StatusGatewayTimeout,
	}

	for pattern := range retryable {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	// Network-level failures are worth one more try
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout")
}
