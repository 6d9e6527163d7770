package gateway

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the persisted bearer token. An empty token means the
// request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config for the REST backend.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	ReadRetryCount int // GET only; writes are never retried
}

// Client is the remote data gateway. Each method issues exactly one logical
// request; it holds no domain state.
type Client struct {
	reads  *resty.Client
	writes *resty.Client
	tokens TokenSource
	logger *zap.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg Config, tokens TokenSource, logger *zap.Logger) *Client {
	c := &Client{
		tokens: tokens,
		logger: logger,
	}

	c.reads = c.newResty(cfg).
		SetRetryCount(cfg.ReadRetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)
	c.writes = c.newResty(cfg).SetRetryCount(0)

	return c
}

func (c *Client) newResty(cfg Config) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.attachAuth)
}

// attachAuth adds the bearer token and a request id to every request.
func (c *Client) attachAuth(_ *resty.Client, r *resty.Request) error {
	r.SetHeader("X-Request-ID", uuid.NewString())
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(r.Context())
	if err != nil {
		// unreadable storage behaves like a missing token
		c.logger.Warn("Failed to read auth token, sending unauthenticated request",
			zap.String("url", r.URL),
			zap.Error(err),
		)
		return nil
	}
	if token != "" {
		r.SetAuthToken(token)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	return c.execute(ctx, c.reads, resty.MethodGet, path, params, nil, result)
}

func (c *Client) send(ctx context.Context, method, path string, params map[string]string, body, result interface{}) error {
	return c.execute(ctx, c.writes, method, path, params, body, result)
}

func (c *Client) execute(ctx context.Context, rc *resty.Client, method, path string, params map[string]string, body, result interface{}) error {
	var errBody errorBody
	req := rc.R().
		SetContext(ctx).
		SetError(&errBody)
	if len(params) > 0 {
		req.SetPathParams(params)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("Gateway request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &APIError{Kind: ErrNetwork, Method: method, Path: path, Err: err}
	}

	if resp.IsError() {
		apiErr := statusError(method, path, resp.StatusCode(), &errBody)
		c.logger.Warn("Gateway returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	c.logger.Debug("Gateway request succeeded",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("latency", resp.Time()),
	)
	return nil
}

func idParam(id string) map[string]string {
	return map[string]string{"id": id}
}
