package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/srsports/backend/internal/metrics"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/pkg/auth"
)

// SessionHandler は breaking session の JSON API ハンドラ
type SessionHandler struct {
	svc     service.BreakingSessionService
	metrics *metrics.Metrics
}

// NewSessionHandler は SessionHandler を生成する
func NewSessionHandler(svc service.BreakingSessionService, m *metrics.Metrics) *SessionHandler {
	return &SessionHandler{svc: svc, metrics: m}
}

type sessionResponse struct {
	*model.BreakingSession
	Profit float64 `json:"profit"`
}

func toSessionResponse(s *model.BreakingSession) sessionResponse {
	return sessionResponse{BreakingSession: s, Profit: s.Profit()}
}

// sessionID returns the {id} path value when it is a UUID.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "")
		return "", false
	}
	return id, true
}

// List handles GET /api/me/sessions (auth required).
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	list, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "list_failed")
		return
	}
	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// Create handles POST /api/me/sessions (auth required).
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "User must be authenticated to create a session")
		return
	}

	var req service.SessionInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}

	s, err := h.svc.Create(r.Context(), userID, req)
	h.metrics.SessionWrite("create", err)
	if err != nil {
		writeServiceError(w, r, err, "create_failed")
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// Get handles GET /api/me/sessions/{id} (auth required).
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Get(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, r, err, "get_failed")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// Update handles PATCH /api/me/sessions/{id} (auth required).
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var patch model.BreakingSessionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}

	s, err := h.svc.Update(r.Context(), id, userID, patch)
	h.metrics.SessionWrite("update", err)
	if err != nil {
		writeServiceError(w, r, err, "update_failed")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// Delete handles DELETE /api/me/sessions/{id} (auth required).
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	err := h.svc.Delete(r.Context(), id, userID)
	h.metrics.SessionWrite("delete", err)
	if err != nil {
		writeServiceError(w, r, err, "delete_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
