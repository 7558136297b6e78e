package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/repository"
	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
)

// MeHandler serves the current user's profile and slot eligibility.
type MeHandler struct {
	userRepo    repository.UserRepository
	eligibility service.EligibilityService
	adminEmails map[string]bool
}

func NewMeHandler(userRepo repository.UserRepository, eligibility service.EligibilityService, adminEmails []string) *MeHandler {
	set := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		set[e] = true
	}
	return &MeHandler{userRepo: userRepo, eligibility: eligibility, adminEmails: set}
}

type meResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role,omitempty"`
	Suspended   bool       `json:"suspended,omitempty"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Me handles GET /api/me (auth required).
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}

	resp := meResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Suspended:   user.IsSuspended(),
		SuspendedAt: user.SuspendedAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if h.adminEmails[user.Email] {
		resp.Role = "admin"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Eligibility handles GET /api/me/eligibility (auth required).
func (h *MeHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	elig, err := h.eligibility.Compute(r.Context(), model.DonorRefForUser(userID))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_donated":   elig.TotalDonated,
		"allowed_slots":   elig.AllowedSlots,
		"used_slots":      elig.UsedSlots,
		"remaining_slots": elig.RemainingSlots,
		"can_create":      elig.CanCreate,
		"per_slot_cost":   elig.PerSlotCost,
		"amount_to_next":  service.AmountToNextSlot(elig.TotalDonated, elig.PerSlotCost),
	})
}
