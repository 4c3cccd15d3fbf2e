package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
)

// HTTPSource fetches the exercise collection from a remote catalog API
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPConfig holds configuration for the HTTP source
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration // default: 30s
}

// NewHTTPSource creates a source backed by a remote catalog endpoint
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPSource{
		baseURL:    cfg.BaseURL,
		httpClient: newCatalogHTTPClient(timeout),
	}
}

// Fetch retrieves the full exercise collection as a JSON array
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.Exercise, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/exercises", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("catalog error (status %d): %s", resp.StatusCode, string(body))
	}

	var exercises []domain.Exercise
	if err := json.NewDecoder(resp.Body).Decode(&exercises); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return exercises, nil
}

// newCatalogHTTPClient creates an HTTP client tuned for catalog fetches:
// short dial timeouts, modest connection reuse.
func newCatalogHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
