// Package site renders the leaderboard as an HTML page.
package site

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/okian/starboard/internal/adapters/export"
	"github.com/okian/starboard/internal/adapters/http/api"
	service "github.com/okian/starboard/internal/app"
	"github.com/okian/starboard/internal/domain/viewstate"
	"github.com/okian/starboard/pkg/logger"
)

// Page texts.
const (
	Title       = "Advent of Code — Leaderboard"
	Subheading  = "Stars Earned Per Year"
	MsgNoData   = "No leaderboard data found."
	errorPrefix = "Error: "
)

// Handler serves the leaderboard page.
type Handler struct {
	deps   api.LeaderboardDependencies
	tmpl   *template.Template
	logger logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New parses the embedded templates and returns a page handler.
func New(deps api.LeaderboardDependencies, opts ...Option) *Handler {
	h := &Handler{
		deps: deps,
		tmpl: template.Must(template.New("site").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("site")
	}
	return h
}

// Register attaches the page and its assets to r.
func (h *Handler) Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.With(api.MetricsMiddleware("page")).Get("/", h.HandleRoot)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(FS())))
}

// HandleRoot handles GET / by running one load cycle for the query's inputs.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := viewstate.FromQuery(r.URL.Query())
	view, err := h.deps.Leaderboard(ctx, state)
	if err != nil {
		h.logger.Error(ctx, "leaderboard load failed", logger.Error(err))
		h.render(ctx, w, http.StatusBadGateway, "message", messagePage{Text: errorPrefix + err.Error(), Error: true})
		return
	}
	if view.Empty {
		h.render(ctx, w, http.StatusOK, "message", messagePage{Text: MsgNoData})
		return
	}
	h.render(ctx, w, http.StatusOK, "page", newPage(view))
}

// render executes into memory so a template failure never leaves a half
// written page behind.
func (h *Handler) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error(ctx, "page render failed", logger.String("template", name), logger.Error(err))
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type messagePage struct {
	Text  string
	Error bool
}

type yearOption struct {
	Year     string
	Selected bool
	// Toggle links to the same view with this year flipped in or out of
	// the totals.
	Toggle string
}

type exportLink struct {
	Label string
	Href  string
	File  string
}

type page struct {
	Title      string
	Subheading string
	View       service.View
	Years      []yearOption
	Exports    []exportLink
	ResetHref  string
}

func newPage(v service.View) page {
	p := page{Title: Title, Subheading: Subheading, View: v}
	for _, y := range v.Years {
		flipped := viewstate.Reduce(v.State, viewstate.ToggleYear{Year: y, All: v.Years})
		p.Years = append(p.Years, yearOption{
			Year:     y,
			Selected: v.YearSelected(y),
			Toggle:   href(flipped.Query()),
		})
	}
	q := v.State.Query().Encode()
	for _, f := range export.Formats() {
		href := "/export/" + export.FileName(f)
		if q != "" {
			href += "?" + q
		}
		p.Exports = append(p.Exports, exportLink{Label: exportLabel(f), Href: href, File: export.FileName(f)})
	}
	p.ResetHref = href(viewstate.Reduce(v.State, viewstate.Reset{}).Query())
	return p
}

func href(q url.Values) string {
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func exportLabel(format string) string {
	if format == export.FormatXLSX {
		return "Export Table as Spreadsheet"
	}
	return "Export Chart as Image"
}

var funcs = template.FuncMap{
	"yearLabel": export.YearLabel,
	"stars": func(perYear []int, i int) int {
		if i < 0 || i >= len(perYear) {
			return 0
		}
		return perYear[i]
	},
}
