package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/service"
)

// ---------------------------------------------------------------------------
// POST /api/milestones/{id}/submit tests
// ---------------------------------------------------------------------------

func TestMilestoneHandler_Submit_RequiresAuth(t *testing.T) {
	h := NewMilestoneHandler(&mockMilestoneService{})
	req := httptest.NewRequest(http.MethodPost, "/api/milestones/m1/submit", strings.NewReader(`{}`))
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMilestoneHandler_Submit_Success(t *testing.T) {
	mock := &mockMilestoneService{
		submitFunc: func(_ context.Context, milestoneID, userID string, in service.SubmissionInput) (*model.MilestoneSubmission, error) {
			if milestoneID != "m1" || userID != "user-1" {
				t.Errorf("unexpected args: milestone=%q user=%q", milestoneID, userID)
			}
			if in.Note != "done" || in.EvidenceURL != "https://example.com/receipt.pdf" {
				t.Errorf("unexpected input: %+v", in)
			}
			return &model.MilestoneSubmission{ID: "s1", MilestoneID: milestoneID, Version: 2, SubmittedBy: userID}, nil
		},
	}
	h := NewMilestoneHandler(mock)

	body := `{"note": "done", "evidence_url": "https://example.com/receipt.pdf"}`
	req := userAuthRequest(http.MethodPost, "/api/milestones/m1/submit", body)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body: %s", rec.Code, rec.Body.String())
	}
	var sub model.MilestoneSubmission
	if err := json.NewDecoder(rec.Body).Decode(&sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.Version != 2 {
		t.Errorf("expected version 2, got %d", sub.Version)
	}
}

func TestMilestoneHandler_Submit_PriorIncomplete(t *testing.T) {
	mock := &mockMilestoneService{
		submitFunc: func(context.Context, string, string, service.SubmissionInput) (*model.MilestoneSubmission, error) {
			return nil, &service.PriorIncompleteError{PriorPosition: 1}
		},
	}
	h := NewMilestoneHandler(mock)

	req := userAuthRequest(http.MethodPost, "/api/milestones/m2/submit", `{"note": "early"}`)
	req.SetPathValue("id", "m2")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp struct {
		Error         string `json:"error"`
		PriorPosition int    `json:"prior_position"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "prior_milestone_incomplete" || resp.PriorPosition != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestMilestoneHandler_Submit_Forbidden(t *testing.T) {
	mock := &mockMilestoneService{
		submitFunc: func(context.Context, string, string, service.SubmissionInput) (*model.MilestoneSubmission, error) {
			return nil, service.ErrForbidden
		},
	}
	h := NewMilestoneHandler(mock)

	req := userAuthRequest(http.MethodPost, "/api/milestones/m1/submit", `{"note": "not mine"}`)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestMilestoneHandler_Submit_NotActivated(t *testing.T) {
	mock := &mockMilestoneService{
		submitFunc: func(context.Context, string, string, service.SubmissionInput) (*model.MilestoneSubmission, error) {
			return nil, service.ErrNotActivated
		},
	}
	h := NewMilestoneHandler(mock)

	req := userAuthRequest(http.MethodPost, "/api/milestones/m1/submit", `{"note": "too soon"}`)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}
