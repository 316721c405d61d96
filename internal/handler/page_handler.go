package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/srsports/backend/internal/logging"
	"github.com/srsports/backend/internal/metrics"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/repository"
	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/internal/web"
	"github.com/srsports/backend/pkg/auth"
)

const maxFormBytes = 64 << 10

// PageHandler serves the server-rendered pages of the site.
type PageHandler struct {
	pages     *web.Renderer
	contacts  service.ContactService
	sessions  service.BreakingSessionService
	dashboard service.DashboardService
	auth      service.AuthService
	secure    bool
	metrics   *metrics.Metrics
}

// PageServices groups the services the pages call.
type PageServices struct {
	Contacts  service.ContactService
	Sessions  service.BreakingSessionService
	Dashboard service.DashboardService
	Auth      service.AuthService
}

// NewPageHandler creates a PageHandler. m may be nil.
func NewPageHandler(pages *web.Renderer, svc PageServices, cfg AuthConfig, m *metrics.Metrics) *PageHandler {
	return &PageHandler{
		pages:     pages,
		contacts:  svc.Contacts,
		sessions:  svc.Sessions,
		dashboard: svc.Dashboard,
		auth:      svc.Auth,
		secure:    cfg.SecureCookies,
		metrics:   m,
	}
}

// page builds the data shared by every page: viewer, theme and pending flash.
func (h *PageHandler) page(w http.ResponseWriter, r *http.Request, title, active string) *web.Page {
	p := &web.Page{
		Title:  title,
		Active: active,
		Path:   r.URL.RequestURI(),
		Dark:   isDark(r),
		Flash:  popFlash(w, r, h.secure),
	}
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		p.User = &web.Viewer{
			Email:   auth.EmailFromContext(r.Context()),
			IsAdmin: auth.IsAdminFromContext(r.Context()),
		}
	}
	return p
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, p *web.Page) {
	if err := h.pages.Render(w, status, name, p); err != nil {
		logging.Error("render failed",
			"page", name,
			"error", err,
			"request_id", RequestIDFromContext(r.Context()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// fail re-renders a page after a failed operation. Validation errors are shown
// next to their fields, anything else as the page alert.
func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, name string, p *web.Page, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		p.Errors = verr.Fields
		h.render(w, r, http.StatusUnprocessableEntity, name, p)
		return
	}
	if errors.Is(err, service.ErrUnauthenticated) {
		h.redirectSignIn(w, r)
		return
	}

	status, body := errorStatus(err, "")
	if status >= http.StatusInternalServerError {
		logging.Error("page request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
	}
	p.Error = body.Message
	switch status {
	case http.StatusForbidden:
		p.Error = "You can only change your own sessions."
	case http.StatusNotFound:
		p.Error = "Session not found."
	}
	if p.Error == "" {
		p.Error = http.StatusText(status)
	}
	h.render(w, r, status, name, p)
}

func (h *PageHandler) redirectSignIn(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/auth?mode=signin&next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
}

func (h *PageHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, msg string) {
	if msg != "" {
		setFlash(w, msg, h.secure)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseForm reads a size-limited urlencoded body.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

// Home handles GET /. Signed-in users see their dashboard, everyone else the hero.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "", "home")
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.render(w, r, http.StatusOK, web.PageIndex, p)
		return
	}
	summary, err := h.dashboard.Summary(r.Context(), userID)
	if err != nil {
		h.fail(w, r, web.PageIndex, p, err)
		return
	}
	p.Summary = summary
	h.render(w, r, http.StatusOK, web.PageIndex, p)
}

// About handles GET /about.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageAbout, h.page(w, r, "About", "about"))
}

// Product handles GET /product.
func (h *PageHandler) Product(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageProduct, h.page(w, r, "Product", "product"))
}

// NotFound renders the error page for unknown paths.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, web.PageError, h.page(w, r, "Page not found", ""))
}

// ContactPage handles GET /contact.
func (h *PageHandler) ContactPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageContact, h.page(w, r, "Contact Us", "contact"))
}

// ContactSubmit handles POST /contact.
func (h *PageHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "Contact Us", "contact")
	if err := parseForm(w, r); err != nil {
		h.fail(w, r, web.PageContact, p, &service.ValidationError{Fields: map[string]string{"message": "Message is too long"}})
		return
	}
	in := service.ContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}
	p.Form = map[string]string{"name": in.Name, "email": in.Email, "message": in.Message}

	_, err := h.contacts.Submit(r.Context(), in)
	h.metrics.ContactSubmitted(err)
	if err != nil {
		h.fail(w, r, web.PageContact, p, err)
		return
	}
	h.redirectWithFlash(w, r, "/contact", contactThanks)
}

// sessionFormDefaults are the values an empty session form starts with.
func sessionFormDefaults() map[string]string {
	return map[string]string{"package_cost": "0", "time_spent": "0", "sales_price": "0"}
}

func sessionForm(s *model.BreakingSession) map[string]string {
	return map[string]string{
		"package_cost":   strconv.FormatFloat(s.PackageCost, 'f', -1, 64),
		"time_spent":     strconv.FormatFloat(s.TimeSpent, 'f', -1, 64),
		"sales_price":    strconv.FormatFloat(s.SalesPrice, 'f', -1, 64),
		"buyer":          s.Buyer,
		"payment_method": s.PaymentMethod,
	}
}

var numberFields = []struct{ key, label string }{
	{"package_cost", "Package cost"},
	{"time_spent", "Time spent"},
	{"sales_price", "Sales price"},
}

// readSessionForm parses the session form. Empty numbers count as 0.
// A non-nil error is a *service.ValidationError for unparsable numbers.
func readSessionForm(r *http.Request) (service.SessionInput, map[string]string, error) {
	form := map[string]string{
		"buyer":          r.PostFormValue("buyer"),
		"payment_method": r.PostFormValue("payment_method"),
	}
	nums := make(map[string]float64, len(numberFields))
	bad := map[string]string{}
	for _, f := range numberFields {
		raw := strings.TrimSpace(r.PostFormValue(f.key))
		form[f.key] = raw
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			bad[f.key] = f.label + " must be a number"
			continue
		}
		nums[f.key] = v
	}
	in := service.SessionInput{
		PackageCost:   nums["package_cost"],
		TimeSpent:     nums["time_spent"],
		SalesPrice:    nums["sales_price"],
		Buyer:         form["buyer"],
		PaymentMethod: form["payment_method"],
	}
	if len(bad) > 0 {
		return in, form, &service.ValidationError{Fields: bad}
	}
	return in, form, nil
}

// sessionsPage loads the user's sessions into p. A load failure becomes the page alert.
func (h *PageHandler) sessionsPage(r *http.Request, p *web.Page, userID string) {
	list, err := h.sessions.List(r.Context(), userID)
	if err != nil {
		logging.Warn("failed to list sessions", "error", err, "request_id", RequestIDFromContext(r.Context()))
		p.Error = err.Error()
		return
	}
	p.Sessions = list
}

// SessionPage handles GET /session (sign-in required).
func (h *PageHandler) SessionPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.redirectSignIn(w, r)
		return
	}
	p := h.page(w, r, "Log Session", "session")
	p.Form = sessionFormDefaults()
	h.sessionsPage(r, p, userID)
	h.render(w, r, http.StatusOK, web.PageSession, p)
}

// SessionCreate handles POST /session. On success the form is reset.
func (h *PageHandler) SessionCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.redirectSignIn(w, r)
		return
	}
	p := h.page(w, r, "Log Session", "session")
	if err := parseForm(w, r); err != nil {
		p.Form = sessionFormDefaults()
		h.sessionsPage(r, p, userID)
		h.fail(w, r, web.PageSession, p, &service.ValidationError{Fields: map[string]string{"buyer": "Form is too large"}})
		return
	}
	in, form, err := readSessionForm(r)
	p.Form = form
	if err == nil {
		_, err = h.sessions.Create(r.Context(), userID, in)
		h.metrics.SessionWrite("create", err)
	}
	if err != nil {
		h.sessionsPage(r, p, userID)
		h.fail(w, r, web.PageSession, p, err)
		return
	}
	h.redirectWithFlash(w, r, "/session", sessionLogged)
}

// pageSessionID returns the {id} path value when it is a UUID, rendering 404 otherwise.
func (h *PageHandler) pageSessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		h.NotFound(w, r)
		return "", false
	}
	return id, true
}

// SessionEditPage handles GET /session/{id}/edit.
func (h *PageHandler) SessionEditPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.redirectSignIn(w, r)
		return
	}
	id, ok := h.pageSessionID(w, r)
	if !ok {
		return
	}
	p := h.page(w, r, "Edit Session", "session")
	s, err := h.sessions.Get(r.Context(), id, userID)
	if err != nil {
		h.fail(w, r, web.PageError, p, err)
		return
	}
	p.Session = s
	p.Form = sessionForm(s)
	h.render(w, r, http.StatusOK, web.PageSessionEdit, p)
}

// SessionEdit handles POST /session/{id}/edit. Every field of the form is applied.
func (h *PageHandler) SessionEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.redirectSignIn(w, r)
		return
	}
	id, ok := h.pageSessionID(w, r)
	if !ok {
		return
	}
	p := h.page(w, r, "Edit Session", "session")
	p.Session = &model.BreakingSession{ID: id}
	if err := parseForm(w, r); err != nil {
		h.fail(w, r, web.PageSessionEdit, p, &service.ValidationError{Fields: map[string]string{"buyer": "Form is too large"}})
		return
	}
	in, form, err := readSessionForm(r)
	p.Form = form
	if err == nil {
		_, err = h.sessions.Update(r.Context(), id, userID, model.BreakingSessionPatch{
			PackageCost:   &in.PackageCost,
			TimeSpent:     &in.TimeSpent,
			SalesPrice:    &in.SalesPrice,
			Buyer:         &in.Buyer,
			PaymentMethod: &in.PaymentMethod,
		})
		h.metrics.SessionWrite("update", err)
	}
	if err != nil {
		name := web.PageSessionEdit
		if errors.Is(err, service.ErrForbidden) || errors.Is(err, repository.ErrNotFound) {
			name = web.PageError
		}
		h.fail(w, r, name, p, err)
		return
	}
	h.redirectWithFlash(w, r, "/session", sessionSaved)
}

// SessionDelete handles POST /session/{id}/delete.
func (h *PageHandler) SessionDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.redirectSignIn(w, r)
		return
	}
	id, ok := h.pageSessionID(w, r)
	if !ok {
		return
	}
	err := h.sessions.Delete(r.Context(), id, userID)
	h.metrics.SessionWrite("delete", err)
	if err != nil {
		h.fail(w, r, web.PageError, h.page(w, r, "Log Session", "session"), err)
		return
	}
	h.redirectWithFlash(w, r, "/session", sessionGone)
}

func authMode(m string) string {
	if m == "signup" {
		return "signup"
	}
	return "signin"
}

func authTitle(mode string) string {
	if mode == "signup" {
		return "Create Account"
	}
	return "Sign In"
}

// AuthPage handles GET /auth?mode=signin|signup&next=/path.
func (h *PageHandler) AuthPage(w http.ResponseWriter, r *http.Request) {
	next := localPath(r.URL.Query().Get("next"), "/")
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	mode := authMode(r.URL.Query().Get("mode"))
	p := h.page(w, r, authTitle(mode), "")
	p.Mode = mode
	p.Next = next
	h.render(w, r, http.StatusOK, web.PageAuth, p)
}

// AuthSubmit handles POST /auth for both sign-in and sign-up.
func (h *PageHandler) AuthSubmit(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "Sign In", "")
	p.Mode = "signin"
	p.Next = "/"
	if err := parseForm(w, r); err != nil {
		h.fail(w, r, web.PageAuth, p, &service.ValidationError{Fields: map[string]string{"email": "Form is too large"}})
		return
	}
	mode := authMode(r.PostFormValue("mode"))
	p.Mode = mode
	p.Title = authTitle(mode)
	p.Next = localPath(r.PostFormValue("next"), "/")
	creds := service.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	p.Form = map[string]string{"email": creds.Email}

	var sess *model.AuthSession
	var err error
	if mode == "signup" {
		sess, err = h.auth.SignUp(r.Context(), creds)
	} else {
		sess, err = h.auth.SignIn(r.Context(), creds)
	}
	h.metrics.AuthAttempt(mode, err)
	if err != nil {
		h.fail(w, r, web.PageAuth, p, err)
		return
	}

	if sess.AccessToken == "" {
		// メール確認が必要なプロジェクト
		p.Mode = "signin"
		p.Title = authTitle("signin")
		p.Flash = checkEmail
		h.render(w, r, http.StatusOK, web.PageAuth, p)
		return
	}
	auth.SetSessionCookies(w, auth.Tokens{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}, h.secure)
	http.Redirect(w, r, p.Next, http.StatusSeeOther)
}

// SignOut handles POST /auth/signout.
func (h *PageHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), auth.AccessTokenFromRequest(r)); err != nil {
		logging.Warn("sign out failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	auth.ClearSessionCookies(w, h.secure)
	h.redirectWithFlash(w, r, "/", signedOut)
}

// Theme handles POST /theme, flipping between light and dark.
func (h *PageHandler) Theme(w http.ResponseWriter, r *http.Request) {
	setTheme(w, !isDark(r), h.secure)
	target := "/"
	if err := parseForm(w, r); err == nil {
		target = localPath(r.PostFormValue("return"), "/")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
