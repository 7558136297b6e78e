// Package payment provides a lightweight Razorpay API client for DreamXec.
// Uses raw HTTP calls (no SDK) to minimize external dependencies.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const apiBaseURL = "https://api.razorpay.com/v1"

// OrderParams are the inputs for creating a Razorpay order. Amount is in
// currency units (₹); the API wants the smallest unit (paise).
type OrderParams struct {
	Amount   int
	Currency string
	Receipt  string
	// Notes round-trip through the gateway and come back on webhook events.
	Notes map[string]string
}

// Order is a created Razorpay order.
type Order struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// PaymentEntity is the payment object inside a webhook event.
type PaymentEntity struct {
	ID               string            `json:"id"`
	OrderID          string            `json:"order_id"`
	Amount           int               `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	ErrorDescription string            `json:"error_description"`
	Notes            map[string]string `json:"notes"`
}

// WebhookEvent is a Razorpay webhook payload.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Client is the Razorpay API client interface.
type Client interface {
	// CreateOrder creates an order and returns it.
	CreateOrder(ctx context.Context, params OrderParams) (Order, error)
	// VerifyWebhookSignature validates the X-Razorpay-Signature header
	// against the raw payload.
	VerifyWebhookSignature(payload []byte, signature string) error
	// ParseWebhookEvent parses a webhook payload.
	ParseWebhookEvent(payload []byte) (WebhookEvent, error)
}

// ErrNotConfigured is returned when the Razorpay keys are not set.
var ErrNotConfigured = errors.New("razorpay: not configured")

// RealClient is a raw HTTP client for the Razorpay API.
type RealClient struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	httpClient    *http.Client
}

// NewClient creates a RealClient.
func NewClient(keyID, keySecret, webhookSecret string) *RealClient {
	return &RealClient{
		KeyID:         keyID,
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateOrder creates an order via POST /v1/orders.
func (c *RealClient) CreateOrder(ctx context.Context, params OrderParams) (Order, error) {
	if c.KeyID == "" || c.KeySecret == "" {
		return Order{}, ErrNotConfigured
	}

	currency := params.Currency
	if currency == "" {
		currency = "INR"
	}

	body := map[string]any{
		"amount":   params.Amount * 100, // paise
		"currency": currency,
	}
	if params.Receipt != "" {
		body["receipt"] = params.Receipt
	}
	if len(params.Notes) > 0 {
		body["notes"] = params.Notes
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		apiBaseURL+"/orders", bytes.NewReader(jsonBody))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Order{}, err
	}
	defer resp.Body.Close()

	var result struct {
		Order
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Order{}, err
	}
	if result.Error != nil {
		return Order{}, fmt.Errorf("razorpay create order: %s", result.Error.Description)
	}
	if result.ID == "" {
		return Order{}, errors.New("razorpay create order: empty order ID in response")
	}
	result.Order.Amount /= 100
	return result.Order, nil
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw payload.
func (c *RealClient) VerifyWebhookSignature(payload []byte, signature string) error {
	if c.WebhookSecret == "" {
		return ErrNotConfigured
	}
	if signature == "" {
		return errors.New("razorpay: missing signature header")
	}

	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return errors.New("razorpay: signature verification failed")
	}
	return nil
}

// ParseWebhookEvent parses the event type and payment entity.
func (c *RealClient) ParseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WebhookEvent{}, err
	}
	return event, nil
}
