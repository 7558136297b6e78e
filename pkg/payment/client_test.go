package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRealClient_VerifyWebhookSignature_Valid(t *testing.T) {
	secret := "whsec_test_secret"
	c := NewClient("rzp_test_key", "key_secret", secret)

	payload := []byte(`{"event":"payment.captured"}`)
	if err := c.VerifyWebhookSignature(payload, signPayload(secret, payload)); err != nil {
		t.Fatalf("expected valid signature to pass, got: %v", err)
	}
}

func TestRealClient_VerifyWebhookSignature_Invalid(t *testing.T) {
	c := NewClient("rzp_test_key", "key_secret", "whsec_test_secret")

	if err := c.VerifyWebhookSignature([]byte(`{}`), "wrongsignature"); err == nil {
		t.Error("expected error for invalid signature")
	}
}

func TestRealClient_VerifyWebhookSignature_Tampered(t *testing.T) {
	secret := "whsec_test_secret"
	c := NewClient("rzp_test_key", "key_secret", secret)

	sig := signPayload(secret, []byte(`{"amount":200000}`))
	if err := c.VerifyWebhookSignature([]byte(`{"amount":900000}`), sig); err == nil {
		t.Error("expected error for tampered payload")
	}
}

func TestRealClient_VerifyWebhookSignature_NotConfigured(t *testing.T) {
	c := NewClient("rzp_test_key", "key_secret", "") // empty webhook secret
	if err := c.VerifyWebhookSignature([]byte(`{}`), "abc"); err == nil {
		t.Error("expected error when not configured")
	}
}

func TestRealClient_CreateOrder_NotConfigured(t *testing.T) {
	c := NewClient("", "", "whsec")
	if _, err := c.CreateOrder(context.Background(), OrderParams{Amount: 2000}); err != ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got: %v", err)
	}
}

func TestRealClient_ParseWebhookEvent(t *testing.T) {
	c := NewClient("", "", "")
	payload := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_test123",
					"order_id": "order_test456",
					"amount": 200000,
					"currency": "INR",
					"status": "captured",
					"notes": {"project_id": "proj-1", "donor_type": "user", "donor_id": "user-1"}
				}
			}
		}
	}`)

	event, err := c.ParseWebhookEvent(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Event != "payment.captured" {
		t.Errorf("expected event=payment.captured, got %q", event.Event)
	}
	entity := event.Payload.Payment.Entity
	if entity.ID != "pay_test123" || entity.OrderID != "order_test456" {
		t.Errorf("unexpected payment entity: %+v", entity)
	}
	if entity.Notes["project_id"] != "proj-1" {
		t.Errorf("expected notes to round-trip, got %v", entity.Notes)
	}
}

func TestRealClient_ParseWebhookEvent_Malformed(t *testing.T) {
	c := NewClient("", "", "")
	if _, err := c.ParseWebhookEvent([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}
