package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
	"github.com/dreamxec/backend/pkg/payment"
)

// PaymentHandler serves donation checkout and the payment gateway webhook.
type PaymentHandler struct {
	donationService service.DonationService
	gateway         payment.Client
	sessionSecret   []byte // non-nil enables donor identification via session cookie
}

func NewPaymentHandler(donationService service.DonationService, gateway payment.Client, sessionSecret []byte) *PaymentHandler {
	return &PaymentHandler{donationService: donationService, gateway: gateway, sessionSecret: sessionSecret}
}

// newDonorToken mints a random guest donor token.
func newDonorToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Checkout handles POST /api/donations/checkout.
// Known users donate under their session; guests get a donor_token cookie so
// donations can later be migrated on signup.
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID  string `json:"project_id"`
		Amount     int    `json:"amount"`
		Currency   string `json:"currency"`
		DonorToken string `json:"donor_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id_required")
		return
	}

	ref, minted := h.resolveDonor(r, req.DonorToken)
	if minted != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     "donor_token",
			Value:    minted,
			Path:     "/",
			MaxAge:   60 * 60 * 24 * 365,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   os.Getenv("ENV") == "production",
		})
	}

	result, err := h.donationService.Checkout(r.Context(), service.CheckoutInput{
		ProjectID: req.ProjectID,
		Donor:     ref,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// resolveDonor prefers the session cookie, then the donor_token from the
// request body or cookie. A guest with no token gets a freshly minted one,
// returned as the second value.
func (h *PaymentHandler) resolveDonor(r *http.Request, bodyToken string) (ref model.DonorRef, minted string) {
	if len(h.sessionSecret) > 0 {
		if cookie, err := r.Cookie(auth.SessionCookieName()); err == nil {
			if userID, err := auth.VerifySessionToken(cookie.Value, h.sessionSecret); err == nil {
				return model.DonorRefForUser(userID), ""
			}
		}
	}
	if bodyToken != "" {
		return model.DonorRefForToken(bodyToken), ""
	}
	if cookie, err := r.Cookie("donor_token"); err == nil && cookie.Value != "" {
		return model.DonorRefForToken(cookie.Value), ""
	}
	token := newDonorToken()
	return model.DonorRefForToken(token), token
}

// Webhook handles POST /api/webhooks/payment.
// Verifies the gateway signature, then marks the donation completed or failed.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("X-Razorpay-Signature")
	if signature == "" {
		writeError(w, http.StatusBadRequest, "missing_signature")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read_body_failed")
		return
	}

	if err := h.gateway.VerifyWebhookSignature(payload, signature); err != nil {
		writeError(w, http.StatusUnauthorized, "signature_verification_failed")
		return
	}

	event, err := h.gateway.ParseWebhookEvent(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload")
		return
	}

	entity := event.Payload.Payment.Entity
	switch event.Event {
	case "payment.captured":
		if err := h.donationService.CompletePayment(r.Context(), entity.OrderID, entity.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "webhook_processing_failed")
			return
		}
	case "payment.failed":
		if err := h.donationService.FailPayment(r.Context(), entity.OrderID); err != nil {
			writeError(w, http.StatusInternalServerError, "webhook_processing_failed")
			return
		}
	default:
		// Unknown events are acknowledged so the gateway stops retrying.
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
