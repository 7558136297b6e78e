package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
)

// MilestoneHandler serves milestone evidence submission.
type MilestoneHandler struct {
	milestoneService service.MilestoneService
}

func NewMilestoneHandler(milestoneService service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

// Submit handles POST /api/milestones/{id}/submit (auth required, owner only).
func (h *MilestoneHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}

	var req struct {
		Note        string `json:"note"`
		EvidenceURL string `json:"evidence_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	sub, err := h.milestoneService.Submit(r.Context(), id, userID, service.SubmissionInput{
		Note:        req.Note,
		EvidenceURL: req.EvidenceURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}
