package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ユーザーに表示する完了メッセージ
const (
	contactThanks = "Thank you for your message! We will get back to you soon."
	sessionLogged = "Session logged successfully!"
	sessionSaved  = "Session updated."
	sessionGone   = "Session deleted."
	signedOut     = "You have been signed out."
	checkEmail    = "Account created. Check your email to confirm your address, then sign in."
)

const (
	flashCookieName = "srs_flash"
	themeCookieName = "srs_theme"
)

// setFlash stores a one-shot message shown on the next page render.
func setFlash(w http.ResponseWriter, msg string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash message and clears it.
func popFlash(w http.ResponseWriter, r *http.Request, secure bool) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

// isDark reports whether the dark theme cookie is set.
func isDark(r *http.Request) bool {
	c, err := r.Cookie(themeCookieName)
	return err == nil && c.Value == "dark"
}

func setTheme(w http.ResponseWriter, dark bool, secure bool) {
	value := "light"
	if dark {
		value = "dark"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// localPath returns p when it is a same-site absolute path, otherwise fallback.
// "//evil.example" や "/\evil.example" のようなオープンリダイレクトを弾く
func localPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return p
}
