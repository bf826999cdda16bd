package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net/http"
	gosync "sync"
	"time"

	"github.com/conorfennell/stepquiz/internal/content"
	"github.com/conorfennell/stepquiz/internal/storage"
	"github.com/conorfennell/stepquiz/internal/sync"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Settings are the knobs of the web server that come from configuration.
type Settings struct {
	// UserEmail is the study account every request acts as.
	UserEmail    string
	HeatmapWeeks int
	// Sync is used by POST /sync. A zero value only refreshes the cache.
	Sync sync.Options
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	loader    *content.Loader
	settings  Settings
	logger    *slog.Logger
	router    *http.ServeMux
	handler   http.Handler
	templates *template.Template

	// now is the clock; tests replace it.
	now func() time.Time

	rngMu gosync.Mutex
	rng   *rand.Rand

	syncMu gosync.Mutex
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, loader *content.Loader, settings Settings, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tpl, err := template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		db:        db,
		loader:    loader,
		settings:  settings,
		logger:    logger,
		router:    http.NewServeMux(),
		templates: tpl,
		now:       time.Now,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	s.handler = requestID(accessLog(s.logger)(recoverPanic(s.logger)(s.router)))
	return s, nil
}

// Handler returns the router wrapped in the request middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements the http.Handler interface with the full middleware
// chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create sub-filesystem for static assets: %w", err)
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	if src, ok := s.loader.Source().(*content.FSSource); ok {
		exhibits := http.FileServer(http.Dir(src.ExhibitDir()))
		s.router.Handle("GET "+content.ExhibitPrefix, http.StripPrefix(content.ExhibitPrefix, exhibits))
	}

	s.router.HandleFunc("GET /health", s.handleHealth())
	s.router.HandleFunc("GET /{$}", s.handleSubjects())
	s.router.HandleFunc("GET /subjects/{key}", s.handleSubject())
	s.router.HandleFunc("GET /subjects/{key}/questions/{qid}", s.handleQuestion())
	s.router.HandleFunc("POST /subjects/{key}/questions/{qid}/answer", s.handleAnswer())
	s.router.HandleFunc("POST /subjects/{key}/questions/{qid}/mastery", s.handleMastery())
	s.router.HandleFunc("GET /stats", s.handleStats())
	s.router.HandleFunc("POST /lang", s.handleLang())
	s.router.HandleFunc("POST /sync", s.handleSync())
	return nil
}

// render executes a named template. The status is already sent when the
// template fails, so failures are only logged.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to render template", "template", name, "error", err)
	}
}

// serverError logs err and answers 500.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// notFound renders the bilingual not-found page.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request, sess *Session) {
	s.render(w, r, http.StatusNotFound, "not_found", s.pageData(r, sess, "Not found"))
}

func (s *Server) pageData(r *http.Request, sess *Session, title string) map[string]any {
	return map[string]any{
		"Path":  r.URL.RequestURI(),
		"Title": title,
		"Lang":  sess.Lang,
		"User":  sess.User,
	}
}

// runSync serialises manual syncs so two clicks never pull at once.
func (s *Server) runSync(ctx context.Context) (sync.Report, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return sync.RunSync(ctx, s.settings.Sync, s.loader)
}
