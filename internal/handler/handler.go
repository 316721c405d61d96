package handler

import (
	"net/http"
	"strings"

	"github.com/srsports/backend/internal/repository"
)

// Handler holds the dependencies shared by the server-wide endpoints.
type Handler struct {
	db          repository.DB
	frontendURL string
}

func New(db repository.DB, frontendURL string) *Handler {
	return &Handler{db: db, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// CORS lets the configured frontend origin call the JSON API with cookies.
// Pages are same-origin and pass through untouched.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		hdr := w.Header()
		hdr.Add("Vary", "Origin")
		// 他オリジンには許可ヘッダを返さない
		if origin := r.Header.Get("Origin"); origin != "" && origin == h.frontendURL {
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Credentials", "true")
			hdr.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			hdr.Set("Access-Control-Max-Age", "600")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
