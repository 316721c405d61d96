package handler

import (
	"net/http"
	"strconv"

	"github.com/srsports/backend/internal/metrics"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/pkg/auth"
)

// ContactHandler handles contact form submission and admin listing.
type ContactHandler struct {
	contactService service.ContactService
	metrics        *metrics.Metrics
}

// NewContactHandler creates a ContactHandler with the given service. m may be nil.
func NewContactHandler(contactService service.ContactService, m *metrics.Metrics) *ContactHandler {
	return &ContactHandler{contactService: contactService, metrics: m}
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.ContactInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}

	c, err := h.contactService.Submit(r.Context(), req)
	h.metrics.ContactSubmitted(err)
	if err != nil {
		writeServiceError(w, r, err, "submit_failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":         true,
		"submission": c,
		"message":    contactThanks,
	})
}

// adminListResponse is the JSON response for GET /api/admin/contacts.
type adminListResponse struct {
	Submissions []*model.ContactSubmission `json:"submissions"`
}

// AdminList handles GET /api/admin/contacts (admin only).
// Supports query params: limit (1-100, default 20), offset.
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	if !auth.IsAdminFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "forbidden", "")
		return
	}

	opts := model.ContactListOptions{Limit: 20}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	list, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, err, "list_failed")
		return
	}
	// Return [] not null for empty lists
	if list == nil {
		list = []*model.ContactSubmission{}
	}
	writeJSON(w, http.StatusOK, adminListResponse{Submissions: list})
}
