package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
)

// parseDueDate parses "YYYY-MM-DD" or RFC3339 into *time.Time, nil when empty.
func parseDueDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}

// ProjectHandler serves campaign CRUD and milestone listing.
type ProjectHandler struct {
	projectService   service.ProjectService
	milestoneService service.MilestoneService
}

func NewProjectHandler(projectService service.ProjectService, milestoneService service.MilestoneService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, milestoneService: milestoneService}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
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

	writeJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// MyProjects handles GET /api/me/projects (auth required).
func (h *ProjectHandler) MyProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projects, err := h.projectService.ListByOwnerID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

type createMilestoneRequest struct {
	Title   string `json:"title"`
	Budget  int    `json:"budget"`
	DueDate string `json:"due_date"`
}

// Create handles POST /api/projects (auth required, slot-guarded).
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Title       string                   `json:"title"`
		Description string                   `json:"description"`
		GoalAmount  int                      `json:"goal_amount"`
		Milestones  []createMilestoneRequest `json:"milestones"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title_required")
		return
	}

	in := service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
	}
	for _, m := range req.Milestones {
		in.Milestones = append(in.Milestones, service.MilestoneInput{
			Title:   m.Title,
			Budget:  m.Budget,
			DueDate: parseDueDate(m.DueDate),
		})
	}

	project, err := h.projectService.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// Milestones handles GET /api/projects/{id}/milestones.
func (h *ProjectHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}

	milestones, err := h.milestoneService.ListByProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, milestones)
}
