package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/repository"
	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
)

// helper: authenticated request with an explicit admin flag
func adminAuthRequest(method, url, body string, isAdmin bool) *http.Request {
	r := userAuthRequest(method, url, body)
	ctx := auth.WithIsAdmin(r.Context(), isAdmin)
	return r.WithContext(ctx)
}

// ---------------------------------------------------------------------------
// AdminOnly middleware tests
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	findByIDFunc       func(ctx context.Context, id string) (*model.User, error)
	findByGoogleIDFunc func(ctx context.Context, googleID string) (*model.User, error)
	createFunc         func(ctx context.Context, u *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	if m.findByGoogleIDFunc != nil {
		return m.findByGoogleIDFunc(ctx, googleID)
	}
	return nil, repository.ErrNotFound
}
func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return nil
}

func TestAdminOnly_SetsFlagForAdminEmail(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFunc: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "admin@dreamxec.in"}, nil
		},
	}
	var sawAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdmin = auth.IsAdminFromContext(r.Context())
	})
	mw := AdminOnly(repo, []string{"admin@dreamxec.in"})

	req := userAuthRequest(http.MethodGet, "/api/admin/projects", "")
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if !sawAdmin {
		t.Error("expected admin flag to be set for listed email")
	}
}

func TestAdminOnly_NonAdminEmail(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFunc: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "student@example.com"}, nil
		},
	}
	var sawAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdmin = auth.IsAdminFromContext(r.Context())
	})
	mw := AdminOnly(repo, []string{"admin@dreamxec.in"})

	req := userAuthRequest(http.MethodGet, "/api/admin/projects", "")
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if sawAdmin {
		t.Error("admin flag must stay false for an unlisted email")
	}
}

func TestAdminOnly_Unauthenticated(t *testing.T) {
	mw := AdminOnly(&mockUserRepo{}, nil)
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/admin/projects", nil)
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("next handler must not run without a user")
	}
}

// ---------------------------------------------------------------------------
// Admin endpoint tests
// ---------------------------------------------------------------------------

func TestAdminHandler_ListProjects_Forbidden(t *testing.T) {
	h := NewAdminHandler(&mockProjectService{}, &mockMilestoneService{})
	req := adminAuthRequest(http.MethodGet, "/api/admin/projects", "", false)
	rec := httptest.NewRecorder()
	h.ListProjects(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestAdminHandler_ListProjects_DefaultsToPending(t *testing.T) {
	var gotStatus string
	mock := &mockProjectService{
		listFunc: func(_ context.Context, status string, _, _ int) ([]*model.Project, error) {
			gotStatus = status
			return nil, nil
		},
	}
	h := NewAdminHandler(mock, &mockMilestoneService{})

	req := adminAuthRequest(http.MethodGet, "/api/admin/projects", "", true)
	rec := httptest.NewRecorder()
	h.ListProjects(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotStatus != model.ProjectStatusPending {
		t.Errorf("expected PENDING default, got %q", gotStatus)
	}
	var resp struct {
		Projects []*model.Project `json:"projects"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Projects == nil {
		t.Error("projects must encode as an empty array, not null")
	}
}

func TestAdminHandler_DecideProject(t *testing.T) {
	var gotID, gotDecision string
	mock := &mockProjectService{
		decideFunc: func(_ context.Context, id, decision string) error {
			gotID, gotDecision = id, decision
			return nil
		},
	}
	h := NewAdminHandler(mock, &mockMilestoneService{})

	req := adminAuthRequest(http.MethodPatch, "/api/admin/projects/p1/status", `{"status": "APPROVED"}`, true)
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.DecideProject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", rec.Code, rec.Body.String())
	}
	if gotID != "p1" || gotDecision != "APPROVED" {
		t.Errorf("unexpected decide args: id=%q decision=%q", gotID, gotDecision)
	}
}

func TestAdminHandler_DecideProject_InvalidState(t *testing.T) {
	mock := &mockProjectService{
		decideFunc: func(context.Context, string, string) error {
			return service.ErrInvalidState
		},
	}
	h := NewAdminHandler(mock, &mockMilestoneService{})

	req := adminAuthRequest(http.MethodPatch, "/api/admin/projects/p1/status", `{"status": "APPROVED"}`, true)
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.DecideProject(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestAdminHandler_DecideMilestone(t *testing.T) {
	var gotID, gotDecision, gotFeedback string
	mock := &mockMilestoneService{
		decideFunc: func(_ context.Context, id, decision, feedback string) error {
			gotID, gotDecision, gotFeedback = id, decision, feedback
			return nil
		},
	}
	h := NewAdminHandler(&mockProjectService{}, mock)

	body := `{"status": "REJECTED", "feedback": "receipt is unreadable"}`
	req := adminAuthRequest(http.MethodPatch, "/api/admin/milestones/m1/decision", body, true)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.DecideMilestone(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "m1" || gotDecision != "REJECTED" || gotFeedback != "receipt is unreadable" {
		t.Errorf("unexpected decide args: id=%q decision=%q feedback=%q", gotID, gotDecision, gotFeedback)
	}
}
