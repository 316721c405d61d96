package handler

import (
	"net/http"

	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/pkg/auth"
)

// DashboardHandler serves the aggregated profit/loss summary.
type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary handles GET /api/me/dashboard (auth required).
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	summary, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "summary_failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
