package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/srsports/backend/internal/logging"
	"github.com/srsports/backend/internal/metrics"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/pkg/auth"
)

// AuthConfig は認証ハンドラの設定
type AuthConfig struct {
	SecureCookies bool
}

// AuthHandler は e-mail / password 認証の JSON API ハンドラ
type AuthHandler struct {
	svc     service.AuthService
	cfg     AuthConfig
	metrics *metrics.Metrics
}

// NewAuthHandler は AuthHandler を生成する
func NewAuthHandler(svc service.AuthService, cfg AuthConfig, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg, metrics: m}
}

type authResponse struct {
	User                 *model.User `json:"user"`
	ExpiresAt            *time.Time  `json:"expires_at,omitempty"`
	AccessToken          string      `json:"access_token,omitempty"`
	ConfirmationRequired bool        `json:"confirmation_required,omitempty"`
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}

	sess, err := h.svc.SignIn(r.Context(), req)
	h.metrics.AuthAttempt("signin", err)
	if err != nil {
		writeServiceError(w, r, err, "signin_failed")
		return
	}

	h.setCookies(w, sess)
	writeJSON(w, http.StatusOK, authResponse{User: sess.User, ExpiresAt: &sess.ExpiresAt, AccessToken: sess.AccessToken})
}

// SignUp handles POST /api/auth/signup. When the project requires e-mail
// confirmation no cookies are set and confirmation_required is true.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}

	sess, err := h.svc.SignUp(r.Context(), req)
	h.metrics.AuthAttempt("signup", err)
	if err != nil {
		writeServiceError(w, r, err, "signup_failed")
		return
	}

	if sess.AccessToken == "" {
		writeJSON(w, http.StatusCreated, authResponse{User: sess.User, ConfirmationRequired: true})
		return
	}
	h.setCookies(w, sess)
	writeJSON(w, http.StatusCreated, authResponse{User: sess.User, ExpiresAt: &sess.ExpiresAt, AccessToken: sess.AccessToken})
}

// SignOut handles POST /api/auth/signout. Cookies are cleared even when the
// upstream revoke fails.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SignOut(r.Context(), auth.AccessTokenFromRequest(r)); err != nil {
		logging.Warn("sign out failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	auth.ClearSessionCookies(w, h.cfg.SecureCookies)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) setCookies(w http.ResponseWriter, sess *model.AuthSession) {
	auth.SetSessionCookies(w, auth.Tokens{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}, h.cfg.SecureCookies)
}

// RefreshFunc adapts the auth service for auth.Options.Refresh.
func RefreshFunc(svc service.AuthService) auth.RefreshFunc {
	return func(ctx context.Context, refreshToken string) (*auth.Tokens, error) {
		sess, err := svc.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		return &auth.Tokens{
			AccessToken:  sess.AccessToken,
			RefreshToken: sess.RefreshToken,
			ExpiresAt:    sess.ExpiresAt,
		}, nil
	}
}
