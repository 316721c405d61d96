// Package web holds the embedded HTML templates and static assets of the site.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/srsports/backend/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages rendered inside the shared layout.
const (
	PageIndex       = "index"
	PageAbout       = "about"
	PageProduct     = "product"
	PageContact     = "contact"
	PageSession     = "session"
	PageSessionEdit = "session_edit"
	PageAuth        = "auth"
	PageError       = "error"
)

var pageNames = []string{
	PageIndex, PageAbout, PageProduct, PageContact,
	PageSession, PageSessionEdit, PageAuth, PageError,
}

// Viewer is the signed-in user as shown in the navigation.
type Viewer struct {
	Email   string
	IsAdmin bool
}

// Page is the data every template receives.
type Page struct {
	Title  string
	Active string // nav item to highlight
	Path   string // current request path, used as the theme toggle return target
	User   *Viewer
	Dark   bool
	Flash  string
	Error  string

	// forms
	Form   map[string]string
	Errors map[string]string
	Mode   string // auth page: signin or signup
	Next   string

	// dashboard and session pages
	Summary  *model.DashboardSummary
	Sessions []*model.BreakingSession
	Session  *model.BreakingSession

	Year int
}

// Renderer executes a page template inside the layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout together with every page template.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/session_fields.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the page with the given status. The template is executed into
// a buffer first so a template error never produces a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded /static assets.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

var funcs = template.FuncMap{
	"money":       Money,
	"hours":       Hours,
	"date":        func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"ago":         func(t time.Time) string { return humanize.Time(t) },
	"profitClass": profitClass,
	"field":       field,
	"lower":       strings.ToLower,
}

// Money formats an amount as dollars with thousands separators, e.g. -$1,234.50.
func Money(v float64) string {
	v = model.RoundCents(v)
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Hours formats a duration in hours, e.g. "1.5 hrs".
func Hours(v float64) string {
	s := humanize.FormatFloat("#,###.##", v)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	if v == 1 {
		return s + " hr"
	}
	return s + " hrs"
}

func profitClass(v float64) string {
	switch {
	case v > 0:
		return "profit"
	case v < 0:
		return "loss"
	default:
		return "even"
	}
}

// field returns m[key] or "" for a nil map.
func field(m map[string]string, key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}
