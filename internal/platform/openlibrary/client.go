package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound means the catalog has no record for the requested ISBN.
	ErrNotFound = errors.New("openlibrary: not found")
	// ErrUpstream covers transport failures, timeouts and unexpected statuses.
	ErrUpstream = errors.New("openlibrary: upstream unavailable")
)

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"
	defaultTimeout   = 10 * time.Second
)

type Config struct {
	BaseURL      string
	CoversURL    string
	UserAgent    string
	RPS          int
	MaxRetries   int
	Timeout      time.Duration
	RetryBackoff time.Duration
	// CoverSize is the variant the preview cover check requests. It must match the
	// size the cover acquirer downloads.
	CoverSize string
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
	maxRetries int
	timeout    time.Duration
	backoff    time.Duration
	coverSize  string
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.CoversURL == "" {
		cfg.CoversURL = defaultCoversURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Every(time.Second / time.Duration(cfg.RPS))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:  cfg.UserAgent,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		coversURL:  strings.TrimRight(cfg.CoversURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
		backoff:    cfg.RetryBackoff,
		coverSize:  normalizeSize(cfg.CoverSize),
		logger:     logger,
	}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// get fetches url and decodes the JSON body into target. 429 and 5xx
// responses are retried with exponential backoff.
func (c *Client) get(ctx context.Context, url string, target any) error {
	return c.getWithRetries(ctx, url, target, c.maxRetries)
}

// getOnce is for best-effort calls (authors, works) whose failure is
// swallowed anyway.
func (c *Client) getOnce(ctx context.Context, url string, target any) error {
	return c.getWithRetries(ctx, url, target, 0)
}

func (c *Client) getWithRetries(ctx context.Context, url string, target any, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			// backoff, 2*backoff, 4*backoff...
			wait := time.Duration(1<<uint(i-1)) * c.backoff
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && !retryable(se.code) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	if maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, url string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
