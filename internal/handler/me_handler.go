package handler

import (
	"net/http"

	"github.com/srsports/backend/pkg/auth"
)

// MeHandler は現在のユーザー情報を返すハンドラ
type MeHandler struct{}

// NewMeHandler は MeHandler を生成する
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// meResponse は GET /api/me のレスポンス
type meResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Me は GET /api/me を処理する（認証必須）
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		ID:      userID,
		Email:   auth.EmailFromContext(r.Context()),
		IsAdmin: auth.IsAdminFromContext(r.Context()),
	})
}
