package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// RefreshFunc trades a refresh token for a new token pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (*Tokens, error)

// Options configures Middleware.
type Options struct {
	Admins        AdminList
	Refresh       RefreshFunc // optional; enables silent refresh of expired cookie sessions
	SecureCookies bool
	SignInPath    string // page redirect target for RequirePage; defaults to /auth
}

// Middleware resolves the caller's identity from the request and stores it in the context.
type Middleware struct {
	authn Authenticator
	opts  Options
}

// NewMiddleware returns a Middleware using authn to verify access tokens.
func NewMiddleware(authn Authenticator, opts Options) *Middleware {
	if opts.SignInPath == "" {
		opts.SignInPath = "/auth"
	}
	return &Middleware{authn: authn, opts: opts}
}

// identify returns a request context carrying the caller's identity, or
// ok=false when the request is not authenticated.
func (m *Middleware) identify(w http.ResponseWriter, r *http.Request) (context.Context, bool, error) {
	ctx := r.Context()
	token := AccessTokenFromRequest(r)

	var id *Identity
	var err error
	if token != "" {
		id, err = m.authn.Authenticate(ctx, token)
	}

	// The access cookie expires before the refresh cookie does.
	if (token == "" || errors.Is(err, ErrInvalidToken)) && m.opts.Refresh != nil {
		if rt := RefreshTokenFromRequest(r); rt != "" {
			if fresh, rerr := m.opts.Refresh(ctx, rt); rerr == nil {
				SetSessionCookies(w, *fresh, m.opts.SecureCookies)
				token = fresh.AccessToken
				id, err = m.authn.Authenticate(ctx, token)
			}
		}
	}
	if err != nil {
		return ctx, false, err
	}
	if id == nil {
		return ctx, false, nil
	}

	ctx = WithUserID(ctx, id.UserID)
	ctx = WithEmail(ctx, id.Email)
	ctx = WithAccessToken(ctx, token)
	ctx = WithIsAdmin(ctx, m.opts.Admins.IsAdmin(id.Email))
	return ctx, true, nil
}

// RequireAuth は認証必須ミドルウェア。未認証の場合は 401 JSON を返す
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, ok, err := m.identify(w, r)
		if !ok {
			code := "unauthorized"
			if err != nil {
				code = "invalid_session"
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePage redirects unauthenticated page requests to the sign-in page,
// remembering where the user was going.
func (m *Middleware) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, ok, _ := m.identify(w, r)
		if !ok {
			target := m.opts.SignInPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the identity when present and never rejects the request.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _, _ := m.identify(w, r)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DevUserID は開発用のダミー userID（AUTH_REQUIRED=false 時に使用）
const DevUserID = "00000000-0000-0000-0000-000000000001"

// DevAuth は開発用ミドルウェア。ダミー userID を context にセットする
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithUserID(r.Context(), DevUserID)
		ctx = WithEmail(ctx, "dev@localhost")
		ctx = WithIsAdmin(ctx, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
