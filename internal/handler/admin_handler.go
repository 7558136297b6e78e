package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/repository"
	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
)

// AdminHandler serves the campaign and milestone review endpoints.
type AdminHandler struct {
	projectService   service.ProjectService
	milestoneService service.MilestoneService
}

func NewAdminHandler(projectService service.ProjectService, milestoneService service.MilestoneService) *AdminHandler {
	return &AdminHandler{projectService: projectService, milestoneService: milestoneService}
}

// AdminOnly resolves the authenticated user's email against the admin list
// and stores the flag in the context. Must run after RequireAuth.
func AdminOnly(userRepo repository.UserRepository, adminEmails []string) func(http.Handler) http.Handler {
	set := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		set[e] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := auth.WithIsAdmin(r.Context(), set[user.Email])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if !auth.IsAdminFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// ListProjects handles GET /api/admin/projects (admin-only).
// Defaults to the PENDING review queue.
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.ProjectStatusPending
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	projects, err := h.projectService.List(r.Context(), status, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// DecideProject handles PATCH /api/admin/projects/{id}/status (admin-only).
func (h *AdminHandler) DecideProject(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	id := r.PathValue("id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := h.projectService.Decide(r.Context(), id, req.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DecideMilestone handles PATCH /api/admin/milestones/{id}/decision (admin-only).
func (h *AdminHandler) DecideMilestone(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	id := r.PathValue("id")
	var req struct {
		Status   string `json:"status"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := h.milestoneService.Decide(r.Context(), id, req.Status, req.Feedback); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
