package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// gatewayClient sends messages through a generic JSON-over-HTTP SMS gateway.
// Outbound calls are throttled client-side so a bulk flush cannot trip the
// provider's rate limit even before batch pacing kicks in.
type gatewayClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
}

// NewGatewayClient creates an SMS sender backed by an HTTP gateway.
// GatewayURL, APIKey, and SenderID are required for runtime operation.
func NewGatewayClient(cfg Config) (Sender, error) {
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("%w: GatewayURL is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}
	if cfg.SenderID == "" {
		return nil, fmt.Errorf("%w: SenderID is required", ErrInvalidConfig)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}

	return &gatewayClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		config:     cfg,
	}, nil
}

// MustNewGatewayClient creates a gateway client that panics on invalid
// config, failing fast during initialization.
func MustNewGatewayClient(cfg Config) Sender {
	client, err := NewGatewayClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type gatewayRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

type gatewayResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// SendSMS implements Sender against the configured gateway.
func (c *gatewayClient) SendSMS(ctx context.Context, params SendSMSParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Join(ErrFailedToSendSMS, err)
	}

	payload, err := json.Marshal(gatewayRequest{
		From:    c.config.SenderID,
		To:      NormalizePhone(params.SendTo),
		Message: params.Message,
		Tag:     params.Tag,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendSMS, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Join(ErrFailedToSendSMS, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrFailedToSendSMS, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		var gw gatewayResponse
		if json.Unmarshal(body, &gw) == nil && gw.Error != "" {
			return errors.Join(ErrFailedToSendSMS, fmt.Errorf("gateway error: %d - %s", resp.StatusCode, gw.Error))
		}
		return errors.Join(ErrFailedToSendSMS, fmt.Errorf("gateway error: %d", resp.StatusCode))
	}

	return nil
}
