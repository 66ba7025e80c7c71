// Package remote is the gateway to the aggregation backend's REST API.
// It translates client intents into HTTP calls under /api/v1 and parses
// responses into model records. It holds no state besides transport config
// and never retries; retry policy belongs to the caller.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultURL is the backend origin used when none is configured.
const DefaultURL = "http://localhost:8080"

// apiPrefix is prepended to every request path.
const apiPrefix = "/api/v1"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client provides typed access to the backend API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter // nil when unlimited
	logger     *slog.Logger
}

// Config holds configuration for creating a client.
type Config struct {
	URL           string
	APIKey        string
	AllowInsecure bool          // Permit plain http to non-loopback hosts
	Timeout       time.Duration // Per-request timeout; 0 means 30s
	RateLimitQPS  float64       // Client-side request rate; 0 disables limiting
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("URL scheme must be http or https, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return nil, fmt.Errorf("API URL must include a host (e.g., http://localhost:8080)")
	}

	// Plain http is fine for a backend on this machine; anything else needs opt-in
	if parsedURL.Scheme == "http" && !cfg.AllowInsecure && !isLoopback(parsedURL.Hostname()) {
		return nil, fmt.Errorf("HTTPS required for non-local backends\n\n" +
			"Options:\n" +
			"  1. Use HTTPS: [api] url = \"https://digest.example.com\"\n" +
			"  2. For trusted networks: add 'allow_insecure = true' to [api] in config.toml")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
	if cfg.RateLimitQPS > 0 {
		burst := int(cfg.RateLimitQPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitQPS), burst)
	}
	return c, nil
}

// WithLogger sets the logger for request tracing.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// doRequest performs an HTTP request against the API prefix.
// A non-nil body is sent as JSON.
func (c *Client) doRequest(ctx context.Context, op, method, path string, query url.Values, body any) (*http.Response, error) {
	reqURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: ErrValidation, Op: op, Message: "encode request body", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: ErrNetwork, Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}

	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "op", op, "method", method, "path", path, "error", err)
		return nil, &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return resp, nil
}

// apiError covers both the FastAPI {"detail": ...} shape and the
// {"error", "message"} shape.
type apiError struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// handleErrorResponse reads an error response and returns a classified error.
func handleErrorResponse(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	e := &Error{
		Kind:   kindForStatus(resp.StatusCode),
		Op:     op,
		Status: resp.StatusCode,
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		switch {
		case apiErr.Message != "":
			e.Message = apiErr.Message
		case len(apiErr.Detail) > 0:
			var detail string
			if json.Unmarshal(apiErr.Detail, &detail) == nil {
				e.Message = detail
			} else {
				e.Message = string(apiErr.Detail)
			}
		case apiErr.Error != "":
			e.Message = apiErr.Error
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}

	return e
}

// call performs a request and decodes a 2xx JSON response into out.
// out may be nil when the body is ignored.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	resp, err := c.doRequest(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &Error{Kind: ErrNetwork, Op: op, Err: err}
		}
		return &Error{Kind: ErrDecode, Op: op, Err: err}
	}
	return nil
}

// callRaw performs a request and returns the 2xx response body unparsed.
func (c *Client) callRaw(ctx context.Context, op, method, path string, query url.Values) ([]byte, error) {
	resp, err := c.doRequest(ctx, op, method, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(op, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	return data, nil
}

// requireID rejects empty identifiers before any I/O happens.
func requireID(op, id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError(op, "id is required")
	}
	return nil
}

// pathID escapes an identifier for use as a path segment.
func pathID(id string) string {
	return url.PathEscape(id)
}
