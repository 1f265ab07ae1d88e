package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// Config configures an upstream HTTP client
type Config struct {
	Timeout       time.Duration
	RatePerSecond float64
	UserAgent     string
	Headers       map[string]string
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Temporary reports whether the status is worth retrying
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client is a rate-limited JSON client for upstream APIs
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// New creates a new upstream client
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
			if err := limiter.Wait(r.Context()); err != nil {
				return err
			}
			if cfg.UserAgent != "" {
				r.SetHeader("User-Agent", cfg.UserAgent)
			}
			for k, v := range cfg.Headers {
				r.SetHeader(k, v)
			}
			logger.Debug("Outgoing request", zap.String("url", r.URL))
			return nil
		}).
		AddResponseMiddleware(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				logger.Warn("Upstream request failed",
					zap.Int("status", resp.StatusCode()),
					zap.String("url", resp.Request.URL),
				)
			}
			return nil
		})

	return &Client{
		client:  restyClient,
		logger:  logger,
		limiter: limiter,
	}
}

// GetJSON issues a GET request and decodes a 2xx JSON body into out
func (c *Client) GetJSON(ctx context.Context, url string, query map[string]string, out interface{}) error {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(out)

	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to request %s: %w", url, err)
	}

	if resp.StatusCode() >= 300 {
		return &StatusError{StatusCode: resp.StatusCode(), URL: url}
	}

	return nil
}
