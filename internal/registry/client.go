package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/filizer/internal/model"
)

const (
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the scanner to the registry.
	DefaultUserAgent = "filizer (+https://github.com/nao1215/filizer)"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 8 << 20
)

// Client talks to the registry over HTTP.
// One Client holds one pooled transport and is meant to be reused for every
// file of a scan. A Client is not safe for concurrent use.
type Client struct {
	endpoint    *url.URL
	httpClient  *http.Client
	token       string
	userAgent   string
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	proxy       string
	sleep       SleepFunc
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent in the Authorization header.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxAttempts sets the total number of attempts per operation.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the wait before the second attempt.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProxy routes every connection through a SOCKS5 proxy at host:port.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxy = address
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient uses the given client instead of building one.
// Its transport is still wrapped so registry headers are set.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a Client for the registry at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	endpoint, err := url.Parse(baseURL)
	if err != nil || endpoint.Host == "" || (endpoint.Scheme != "http" && endpoint.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	c := &Client{
		endpoint:    endpoint,
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		sleep:       sleepContext,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport, err := newTransport(c.proxy)
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{Transport: transport}
	} else {
		// Copy so the caller's client is not modified.
		copied := *c.httpClient
		c.httpClient = &copied
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = &headerInjectingTransport{
		base:    base,
		headers: registryHeaders(c.token, c.userAgent),
	}
	c.httpClient.Timeout = c.timeout

	return c, nil
}

// Endpoint returns the registry URL without query parameters.
func (c *Client) Endpoint() string {
	u := *c.endpoint
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Validate asks the registry for entries recorded with the same name,
// parent directory and digest.
//
// A 2xx response with a JSON array yields its entries (possibly none). A 2xx
// response with any other JSON value yields no entries. Malformed JSON,
// timeouts, connection failures and unexpected statuses return an error
// wrapping ErrUnavailable. A 401 returns an error wrapping ErrUnauthorized.
func (c *Client) Validate(ctx context.Context, name, parentDir, digest string) ([]model.RegistryMatch, error) {
	u := *c.endpoint
	query := u.Query()
	query.Set("name_eq", name)
	query.Set("parent_dir_eq", parentDir)
	query.Set("md5_eq", digest)
	u.RawQuery = query.Encode()
	target := u.String()

	status, body, attempts, err := c.do(ctx, "validate", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &StatusError{Op: "validate", StatusCode: status, Attempts: attempts}
	}
	return c.decodeMatches(name, body)
}

// decodeMatches parses a validation response body.
func (c *Client) decodeMatches(name string, body []byte) ([]model.RegistryMatch, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: validate: malformed JSON response for %s", ErrUnavailable, name)
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Debug("registry response is not a list, treating as no matches",
			slog.String("file", name))
		return nil, nil
	}

	var matches []model.RegistryMatch
	if err := json.Unmarshal(trimmed, &matches); err != nil {
		return nil, fmt.Errorf("%w: validate: decode response for %s: %w", ErrUnavailable, name, err)
	}
	return matches, nil
}

// Submit posts a file record to the registry.
// Any non-2xx status or network failure is returned as an error.
func (c *Client) Submit(ctx context.Context, record model.FileRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("submit: encode record for %s: %w", record.Name, err)
	}
	target := c.Endpoint()

	status, _, attempts, err := c.do(ctx, "submit", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	})
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return &StatusError{Op: "submit", StatusCode: status, Attempts: attempts}
	}
	return nil
}

// do sends the request built by newRequest, retrying transient server
// errors. It returns the final status, the response body and the number of
// attempts made. Transport failures are returned as errors wrapping
// ErrUnavailable and are not retried.
func (c *Client) do(ctx context.Context, op string, newRequest func(context.Context) (*http.Request, error)) (int, []byte, int, error) {
	for attempt := 1; ; attempt++ {
		req, err := newRequest(ctx)
		if err != nil {
			return 0, nil, attempt, fmt.Errorf("%s: build request: %w", op, err)
		}

		c.logger.Debug("registry request",
			slog.String("op", op),
			slog.String("method", req.Method),
			slog.Int("attempt", attempt))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, attempt, fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close() //nolint:errcheck,gosec // body fully read
		if readErr != nil {
			return 0, nil, attempt, fmt.Errorf("%w: %s: read response: %w", ErrUnavailable, op, readErr)
		}

		if !isRetryableStatus(resp.StatusCode) || attempt >= c.maxAttempts {
			return resp.StatusCode, body, attempt, nil
		}

		wait, ok := retryAfter(resp)
		if !ok {
			wait = backoffDelay(c.backoff, attempt)
		}
		c.logger.Warn("transient registry failure, retrying",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait))

		if err := c.sleep(ctx, wait); err != nil {
			return 0, nil, attempt, fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
		}
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// IsFatal reports whether err should stop the whole scan.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
