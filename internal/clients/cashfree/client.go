// Package cashfree is a client for the Cashfree PG orders and subscriptions REST API.
package cashfree

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

	"github.com/rs/zerolog"
)

var ErrMissingCredentials = errors.New("cashfree: client id and client secret are required")

type Config struct {
	ClientID                string
	ClientSecret            string
	BaseURL                 string
	OrdersAPIVersion        string
	SubscriptionsAPIVersion string
	Timeout                 time.Duration
	MaxRetries              int           // extra attempts after the first, transient failures only
	RetryBaseDelay          time.Duration // doubled on every retry
}

// Client issues authenticated calls against the gateway.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.OrdersAPIVersion == "" {
		cfg.OrdersAPIVersion = "2023-08-01"
	}
	if cfg.SubscriptionsAPIVersion == "" {
		cfg.SubscriptionsAPIVersion = "2025-01-01"
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "cashfree").Logger(),
		sleep:      sleepContext,
	}, nil
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	raw, err := c.do(ctx, http.MethodPost, "/orders", c.cfg.OrdersAPIVersion, req, req.OrderID)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	raw, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), c.cfg.OrdersAPIVersion, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func (c *Client) GetOrderPayments(ctx context.Context, orderID string) ([]Payment, error) {
	raw, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/payments", c.cfg.OrdersAPIVersion, nil, "")
	if err != nil {
		return nil, err
	}
	var payments []Payment
	if err := json.Unmarshal(raw, &payments); err != nil {
		return nil, fmt.Errorf("cashfree: decode payments: %w", err)
	}
	return payments, nil
}

func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	raw, err := c.do(ctx, http.MethodPost, "/subscriptions", c.cfg.SubscriptionsAPIVersion, req, req.SubscriptionID)
	if err != nil {
		return nil, err
	}
	return decodeSubscription(raw)
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	raw, err := c.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionID), c.cfg.SubscriptionsAPIVersion, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeSubscription(raw)
}

// ManageSubscription pauses, activates or cancels a subscription. The response body is
// returned as-is since its shape varies by action.
func (c *Client) ManageSubscription(ctx context.Context, subscriptionID string, action SubscriptionAction) (json.RawMessage, error) {
	body := manageSubscriptionRequest{SubscriptionID: subscriptionID, Action: action}
	return c.do(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(subscriptionID)+"/manage", c.cfg.SubscriptionsAPIVersion, body, "")
}

func (c *Client) do(ctx context.Context, method, path, apiVersion string, body any, idempotencyKey string) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cashfree: encode request: %w", err)
		}
		payload = b
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.cfg.RetryBaseDelay * time.Duration(1<<uint(attempt-1))
			c.log.Warn().
				Err(lastErr).
				Str("method", method).
				Str("path", path).
				Int("attempt", attempt+1).
				Dur("wait", wait).
				Msg("Gateway request failed, retrying")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		raw, err := c.once(ctx, method, path, apiVersion, payload, idempotencyKey)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, path, apiVersion string, payload []byte, idempotencyKey string) (json.RawMessage, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("cashfree: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.cfg.ClientID)
	req.Header.Set("x-client-secret", c.cfg.ClientSecret)
	req.Header.Set("x-api-version", apiVersion)
	if idempotencyKey != "" {
		req.Header.Set("x-idempotency-key", idempotencyKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{err: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Gateway request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newGatewayError(resp.StatusCode, respBody)
	}
	return json.RawMessage(respBody), nil
}

func decodeOrder(raw json.RawMessage) (*Order, error) {
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("cashfree: decode order: %w", err)
	}
	o.Raw = raw
	return &o, nil
}

func decodeSubscription(raw json.RawMessage) (*Subscription, error) {
	var s Subscription
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("cashfree: decode subscription: %w", err)
	}
	s.Raw = raw
	return &s, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
