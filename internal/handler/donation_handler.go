package handler

import (
	"net/http"
	"strconv"

	"github.com/dreamxec/backend/internal/service"
	"github.com/dreamxec/backend/pkg/auth"
)

// DonationHandler serves the donor's own donation history and the guest
// token migration.
type DonationHandler struct {
	donationService service.DonationService
}

func NewDonationHandler(donationService service.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

// MyDonations handles GET /api/me/donations (auth required).
func (h *DonationHandler) MyDonations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 50
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

	donations, err := h.donationService.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, donations)
}

// MigrateFromToken handles POST /api/me/migrate-from-token (auth required).
// Reads donor_token from Cookie and attributes its donations to the current user.
func (h *DonationHandler) MigrateFromToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cookie, err := r.Cookie("donor_token")
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusBadRequest, "donor_token_missing")
		return
	}

	result, err := h.donationService.MigrateToken(r.Context(), cookie.Value, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"migrated_count":   result.MigratedCount,
		"already_migrated": result.AlreadyMigrated,
	})
}
