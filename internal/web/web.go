// Package web serves the public site and the admin dashboard as
// server-rendered pages.
//
// Pages read from the same hooks the JSON API and the live feed use: the
// process-wide works list, a per-request work detail and a per-request
// comment thread. Notifications survive redirects in the flash cookie.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/narratives/internal/ambience"
	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/identity"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/ctxutil"
	"github.com/taibuivan/narratives/internal/platform/flash"
	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/site"
	"github.com/taibuivan/narratives/internal/summary"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"landing", "about", "literature", "detail", "admin", "confirm_delete"}

// Deps are the collaborators of a [Handler].
type Deps struct {
	// Works is the activated, process-wide works list.
	Works *literature.List

	WorkRepo    literature.Repository
	CommentRepo comment.Repository
	Feed        gateway.Subscriber
	Auth        identity.AuthAPI
	Summary     *summary.Service
	Content     site.Content
	Logger      *slog.Logger

	// CommentLimit throttles comment posting. It may be nil.
	CommentLimit func(http.Handler) http.Handler

	// LiveGauge counts open live connections. It may be nil.
	LiveGauge gateway.Gauge

	// Now is the clock for form defaults. It may be nil.
	Now func() time.Time
}

type Handler struct {
	deps      Deps
	templates map[string]*template.Template
}

// NewHandler parses every page template up front.
func NewHandler(deps Deps) (*Handler, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		parsed, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s template: %w", name, err)
		}
		templates[name] = parsed
	}

	return &Handler{deps: deps, templates: templates}, nil
}

// RegisterRoutes mounts the pages.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.landing)
	router.Get("/about", handler.about)

	router.Route("/literature", func(router chi.Router) {
		router.Get("/", handler.listWorks)
		router.Post("/refetch", handler.refetchWorks)
		router.Get("/{id}", handler.showWork)
		router.Post("/{id}/summary", handler.summarizeWork)

		comments := router.With()
		if handler.deps.CommentLimit != nil {
			comments = router.With(handler.deps.CommentLimit)
		}
		comments.Post("/{id}/comments", handler.postComment)
	})

	router.Route("/admin", func(router chi.Router) {
		router.Get("/", handler.adminHome)

		router.Group(func(router chi.Router) {
			router.Use(requireSignIn)
			router.Get("/works/new", handler.newWork)
			router.Post("/works", handler.createWork)
			router.Post("/works/upload", handler.uploadContent)
			router.Get("/works/{id}/edit", handler.editWork)
			router.Post("/works/{id}", handler.updateWork)
			router.Get("/works/{id}/delete", handler.confirmDelete)
			router.Post("/works/{id}/delete", handler.deleteWork)
		})
	})
}

// RegisterLiveRoutes mounts the WebSocket endpoints. They must not sit
// behind a request timeout.
func (handler *Handler) RegisterLiveRoutes(router chi.Router) {
	router.Get("/works", handler.liveWorks)
	router.Get("/works/{id}", handler.liveWork)
}

// # Rendering

// page is what the layout needs around every body.
type page struct {
	Site     site.Content
	Title    string
	Nav      string
	SignedIn bool
	Email    string
	Ambience *ambience.Player
	Toasts   []flash.Message
	Live     string
	Body     any
}

var funcs = template.FuncMap{
	"date": func(d literature.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.Format("January 2, 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Local().Format("Jan 2, 2006 3:04 PM")
	},
	"types": literature.Types,
}

func (handler *Handler) newPage(request *http.Request, title, nav string, body any) page {
	claims := requestutil.Claims(request)

	p := page{
		Site:     handler.deps.Content,
		Title:    title,
		Nav:      nav,
		SignedIn: claims != nil,
		Ambience: ambience.FromRequest(handler.deps.Content.Ambience.TrackURL, request),
		Body:     body,
	}
	if claims != nil {
		p.Email = claims.Email
	}
	return p
}

// render writes a page. Pending flash messages are shown before toasts.
func (handler *Handler) render(writer http.ResponseWriter, request *http.Request, status int, name string, p page, toasts ...flash.Message) {
	if message := flash.Take(writer, request); message != nil {
		p.Toasts = append(p.Toasts, *message)
	}
	p.Toasts = append(p.Toasts, toasts...)

	var buffer bytes.Buffer
	if err := handler.templates[name].ExecuteTemplate(&buffer, "layout", p); err != nil {
		ctxutil.GetLogger(request.Context()).Error("page_render_failed",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

// back redirects to the page the form was posted from, or to fallback.
func back(writer http.ResponseWriter, request *http.Request, fallback string) {
	target := fallback
	if referer := request.Referer(); referer != "" {
		if parsed, err := request.URL.Parse(referer); err == nil && parsed.Host == request.Host {
			target = parsed.RequestURI()
		}
	}
	http.Redirect(writer, request, target, http.StatusSeeOther)
}
