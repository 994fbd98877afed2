package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pixelfood/internal/apierror"

	"github.com/rs/zerolog/log"
)

// ErrDecode wraps a 2xx response whose body did not match the expected shape.
var ErrDecode = errors.New("backend: unexpected response body")

// TokenSource supplies the bearer token for outgoing requests. An empty
// string means "send no Authorization header".
type TokenSource interface {
	Token() string
}

// BackendClient is the HTTP client of the REST backend collaborator.
// Every failure is returned as *apierror.RemoteError so callers can tell
// transport problems from validation answers.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
	tokens     TokenSource
}

// NewBackendClient builds a client for baseURL. timeout is the transport
// timeout; zero means none.
func NewBackendClient(baseURL string, timeout time.Duration, breaker *CircuitBreaker) *BackendClient {
	if breaker == nil {
		breaker = NewCircuitBreaker(DefaultCBConfig())
	}
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

// UseTokenSource attaches the session that owns the access token.
func (c *BackendClient) UseTokenSource(ts TokenSource) { c.tokens = ts }

// Breaker exposes the circuit breaker state for health reporting.
func (c *BackendClient) Breaker() *CircuitBreaker { return c.breaker }

func (c *BackendClient) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *BackendClient) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *BackendClient) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *BackendClient) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *BackendClient) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one JSON request through the circuit breaker and decodes a 2xx
// body into out (when out is non-nil and the body is not empty).
func (c *BackendClient) Do(ctx context.Context, method, path string, body, out any) error {
	err := c.breaker.Execute(func() error {
		return c.do(ctx, method, path, body, out)
	}, apierror.IsTransport)
	if errors.Is(err, ErrCircuitOpen) {
		return apierror.Transport(err)
	}
	return err
}

func (c *BackendClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" && tok != "undefined" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The caller went away; not a backend failure.
			return err
		}
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return apierror.Transport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.Transport(fmt.Errorf("read body: %w", err))
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierror.FromResponse(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}
