package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 512
)

// ClientConfig holds the gateway credentials and transport bounds.
type ClientConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Client talks to the Razorpay orders API. Every call runs under a timeout and through a circuit breaker;
// transport failures, timeouts, 5xx answers and an open breaker all surface as domain.ErrGatewayUnavailable.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Intent]
	logger  *zap.Logger
}

// NewClient builds a gateway client. A nil httpClient uses a default one bounded by cfg.Timeout.
func NewClient(cfg ClientConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger = logging.OrNop(logger)

	breaker := gobreaker.NewCircuitBreaker[*Intent](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("payments: breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{cfg: cfg, http: httpClient, breaker: breaker, logger: logger}
}

type createIntentBody struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	body, err := json.Marshal(createIntentBody{Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt})
	if err != nil {
		return nil, fmt.Errorf("encode intent request: %w", err)
	}
	return c.execute(ctx, http.MethodPost, "/orders", body)
}

// LookupIntent fetches an intent by id. An unknown id yields domain.ErrNotFound.
func (c *Client) LookupIntent(ctx context.Context, intentID string) (*Intent, error) {
	if intentID == "" {
		return nil, domain.ErrNotFound
	}
	return c.execute(ctx, http.MethodGet, "/orders/"+url.PathEscape(intentID), nil)
}

func (c *Client) execute(ctx context.Context, method, path string, body []byte) (*Intent, error) {
	intent, err := c.breaker.Execute(func() (*Intent, error) {
		return c.do(ctx, method, path, body)
	})
	if err == nil {
		return intent, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("payments: breaker rejected call", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return nil, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("payments: gateway call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		c.logger.Error("payments: gateway rejected call",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return nil, fmt.Errorf("%w: gateway status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%w: decode gateway response: %v", domain.ErrGatewayUnavailable, err)
	}
	return &intent, nil
}
