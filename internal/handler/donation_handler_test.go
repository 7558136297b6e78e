package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
)

// ---------------------------------------------------------------------------
// Mock DonationService
// ---------------------------------------------------------------------------

type mockDonationService struct {
	listByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*model.Donation, error)
	checkoutFunc   func(ctx context.Context, in service.CheckoutInput) (*service.CheckoutResult, error)
	completeFunc   func(ctx context.Context, orderID, paymentID string) error
	failFunc       func(ctx context.Context, orderID string) error
	migrateFunc    func(ctx context.Context, token, userID string) (*service.MigrateTokenResult, error)
}

func (m *mockDonationService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Donation, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}
func (m *mockDonationService) Checkout(ctx context.Context, in service.CheckoutInput) (*service.CheckoutResult, error) {
	if m.checkoutFunc != nil {
		return m.checkoutFunc(ctx, in)
	}
	return &service.CheckoutResult{}, nil
}
func (m *mockDonationService) CompletePayment(ctx context.Context, orderID, paymentID string) error {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, orderID, paymentID)
	}
	return nil
}
func (m *mockDonationService) FailPayment(ctx context.Context, orderID string) error {
	if m.failFunc != nil {
		return m.failFunc(ctx, orderID)
	}
	return nil
}
func (m *mockDonationService) MigrateToken(ctx context.Context, token, userID string) (*service.MigrateTokenResult, error) {
	if m.migrateFunc != nil {
		return m.migrateFunc(ctx, token, userID)
	}
	return nil, nil
}

// helper: authenticated request for a regular user
func userAuthRequest(method, url, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, url, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, url, nil)
	}
	r.Header.Set("Content-Type", "application/json")
	ctx := auth.WithUserID(r.Context(), "user-1")
	return r.WithContext(ctx)
}

// ---------------------------------------------------------------------------
// GET /api/me/donations tests
// ---------------------------------------------------------------------------

func TestDonationHandler_MyDonations_RequiresAuth(t *testing.T) {
	h := NewDonationHandler(&mockDonationService{})
	req := httptest.NewRequest(http.MethodGet, "/api/me/donations", nil)
	rec := httptest.NewRecorder()
	h.MyDonations(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestDonationHandler_MyDonations_Success(t *testing.T) {
	now := time.Now()
	mock := &mockDonationService{
		listByUserFunc: func(_ context.Context, userID string, _, _ int) ([]*model.Donation, error) {
			if userID != "user-1" {
				t.Errorf("expected user-1, got %q", userID)
			}
			return []*model.Donation{
				{ID: "d1", ProjectID: "p1", Amount: 2000, Currency: "INR", PaymentStatus: "completed", CreatedAt: now},
			}, nil
		},
	}
	h := NewDonationHandler(mock)

	req := userAuthRequest(http.MethodGet, "/api/me/donations", "")
	rec := httptest.NewRecorder()
	h.MyDonations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", rec.Code, rec.Body.String())
	}
	var donations []*model.Donation
	if err := json.NewDecoder(rec.Body).Decode(&donations); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(donations) != 1 || donations[0].Amount != 2000 {
		t.Errorf("unexpected donations: %+v", donations)
	}
}

// ---------------------------------------------------------------------------
// POST /api/me/migrate-from-token tests
// ---------------------------------------------------------------------------

func TestDonationHandler_Migrate_MissingCookie(t *testing.T) {
	h := NewDonationHandler(&mockDonationService{})
	req := userAuthRequest(http.MethodPost, "/api/me/migrate-from-token", "")
	rec := httptest.NewRecorder()
	h.MigrateFromToken(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDonationHandler_Migrate_Success(t *testing.T) {
	mock := &mockDonationService{
		migrateFunc: func(_ context.Context, token, userID string) (*service.MigrateTokenResult, error) {
			if token != "token-abc" || userID != "user-1" {
				t.Errorf("unexpected args: token=%q user=%q", token, userID)
			}
			return &service.MigrateTokenResult{MigratedCount: 2}, nil
		},
	}
	h := NewDonationHandler(mock)

	req := userAuthRequest(http.MethodPost, "/api/me/migrate-from-token", "")
	req.AddCookie(&http.Cookie{Name: "donor_token", Value: "token-abc"})
	rec := httptest.NewRecorder()
	h.MigrateFromToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		MigratedCount   int  `json:"migrated_count"`
		AlreadyMigrated bool `json:"already_migrated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.MigratedCount != 2 || resp.AlreadyMigrated {
		t.Errorf("unexpected response: %+v", resp)
	}
}
