package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/config"
)

type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Paystack REST client
func NewClient(cfg config.PaystackConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// InitializeTransaction opens a hosted payment session for the given amount
// (in kobo) and returns the redirect URL and the gateway reference.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*Transaction, error) {
	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope initializeResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("paystack API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Status {
		c.logger.Warn("Paystack rejected transaction",
			zap.Int("status", resp.StatusCode),
			zap.String("message", envelope.Message),
		)
		if envelope.Message == "" {
			envelope.Message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("paystack API error: %s", envelope.Message)
	}

	if envelope.Data.AuthorizationURL == "" || envelope.Data.Reference == "" {
		return nil, fmt.Errorf("paystack API error: incomplete transaction in response")
	}

	return &envelope.Data, nil
}
