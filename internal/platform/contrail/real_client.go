package contrail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"

	"github.com/imamik/rtctl/internal/config"
	"github.com/imamik/rtctl/internal/util/retry"
)

// HeaderAuthToken carries a keystone token on every request.
const HeaderAuthToken = "X-Auth-Token"

// Credentials authenticate requests against the store. A non-empty Token
// takes precedence over basic auth.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// RealClient implements ConfigStore over the store's HTTP API.
type RealClient struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	timeouts   *config.Timeouts
	limiter    *rate.Limiter
	metrics    *Metrics
	log        logr.Logger
}

var _ ConfigStore = (*RealClient)(nil)

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *RealClient) {
		c.log = log
	}
}

// WithMetrics instruments requests with m.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *RealClient) {
		c.metrics = m
	}
}

// WithRateLimiter bounds the request rate against the store. A nil limiter
// leaves requests unthrottled.
func WithRateLimiter(l *rate.Limiter) ClientOption {
	return func(c *RealClient) {
		c.limiter = l
	}
}

// NewRealClient creates a client for the store at baseURL.
func NewRealClient(baseURL string, creds Credentials, opts ...ClientOption) *RealClient {
	c := &RealClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{},
		timeouts:   config.LoadTimeouts(),
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// read issues an idempotent request, retrying while the store is unavailable.
func (c *RealClient) read(ctx context.Context, method, path string, body, out any) error {
	return retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		return c.do(ctx, method, path, body, out)
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
		retry.WithRetryIf(IsUnavailable))
}

// write issues a request exactly once.
func (c *RealClient) write(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out)
}

func (c *RealClient) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %w", ErrStoreUnavailable, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	if c.timeouts.Request > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeouts.Request)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authenticate(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resource := resourceOf(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, resource, "error", time.Since(start))
		return fmt.Errorf("%w: %s %s: %w", ErrStoreUnavailable, method, path, err)
	}
	defer drainAndCloseBody(resp)

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.observe(method, resource, strconv.Itoa(resp.StatusCode), elapsed)
	c.log.V(1).Info("store request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", elapsed.Round(time.Millisecond))
	if err != nil {
		return fmt.Errorf("%w: failed to read response body of %s %s: %w", ErrStoreUnavailable, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response of %s %s: %w", ErrStoreUnavailable, method, path, err)
	}
	return nil
}

func (c *RealClient) authenticate(req *http.Request) {
	if c.creds.Token != "" {
		req.Header.Set(HeaderAuthToken, c.creds.Token)
		return
	}
	if c.creds.Username != "" {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}
}

// resourceOf returns the first path segment, used as the metrics label.
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	return path
}

// drainAndCloseBody reads and closes the response body to ensure connection reuse.
func drainAndCloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
