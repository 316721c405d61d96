package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	accessCookieName  = "srs_access"
	refreshCookieName = "srs_refresh"
	refreshCookieTTL  = 30 * 24 * time.Hour
)

// Tokens is the access/refresh pair kept in the session cookies.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AccessCookieName はアクセストークンのクッキー名
func AccessCookieName() string {
	return accessCookieName
}

// SetSessionCookies stores tokens as HttpOnly cookies.
func SetSessionCookies(w http.ResponseWriter, t Tokens, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    t.AccessToken,
		Path:     "/",
		Expires:  t.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	if t.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookieName,
			Value:    t.RefreshToken,
			Path:     "/",
			Expires:  time.Now().Add(refreshCookieTTL),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// AccessTokenFromRequest reads the access token from the Authorization bearer
// header, falling back to the session cookie.
func AccessTokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(accessCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RefreshTokenFromRequest reads the refresh token cookie.
func RefreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil {
		return c.Value
	}
	return ""
}
