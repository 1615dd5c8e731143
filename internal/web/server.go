// Package web serves the course site: the syllabus, topic pages with their
// self-check exercises, a JSON API over the same exercise state, and the
// instructor answer-key export.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"

	"github.com/hku-span/span2030/internal/curriculum"
	"github.com/hku-span/span2030/internal/exercise"
	"github.com/hku-span/span2030/internal/progress"
	"github.com/hku-span/span2030/internal/session"
)

// Instructor holds the answer-key export credentials. An empty PasswordHash
// disables the export.
type Instructor struct {
	Username     string
	PasswordHash string
}

// SessionOptions configures the learner session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// CheckFunc reports whether a dependency is ready to serve.
type CheckFunc func(ctx context.Context) error

// Options configures a Server. Catalog and Store are required.
type Options struct {
	Catalog        *curriculum.Catalog
	Store          session.Store
	Events         progress.EventLogger
	Normalizer     exercise.Normalizer
	Instructor     Instructor
	Session        SessionOptions
	AllowedOrigins []string
	Checks         map[string]CheckFunc
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	catalog    *curriculum.Catalog
	store      session.Store
	events     progress.EventLogger
	normalizer exercise.Normalizer
	instructor Instructor
	sessions   SessionOptions
	origins    []string
	checks     map[string]CheckFunc
	renderer   *Renderer
}

// New validates opts and parses the templates.
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, errors.New("web: catalog is required")
	}
	if opts.Store == nil {
		return nil, errors.New("web: session store is required")
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		catalog:    opts.Catalog,
		store:      opts.Store,
		events:     opts.Events,
		normalizer: opts.Normalizer,
		instructor: opts.Instructor,
		sessions:   opts.Session,
		origins:    opts.AllowedOrigins,
		checks:     opts.Checks,
		renderer:   renderer,
	}
	if s.events == nil {
		s.events = progress.NopEventLogger{}
	}
	if s.normalizer == nil {
		s.normalizer = exercise.Strict
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	withSession := session.Middleware(s.sessions.CookieName, s.sessions.TTL, s.sessions.Secure)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /static/", staticHandler())

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.Handle("GET /temas/{id}", withSession(http.HandlerFunc(s.handleTopic)))
	mux.Handle("POST /temas/{id}/ejercicios/{block}/comprobar", withSession(http.HandlerFunc(s.handleCheck)))
	mux.Handle("POST /temas/{id}/ejercicios/{block}/reiniciar", withSession(http.HandlerFunc(s.handleReset)))

	mux.Handle("/api/", s.cors(withSession(s.apiMux())))

	mux.HandleFunc("GET /instructor/clave.xlsx", s.requireInstructor(s.handleAnswerKey))
	mux.HandleFunc("GET /instructor/resumen/{id}", s.requireInstructor(s.handleSummary))

	mux.HandleFunc("/", s.handleNotFound)

	var h http.Handler = mux
	h = handlers.CompressHandler(h)
	h = recoveryMiddleware(h)
	h = loggingMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}

func (s *Server) apiMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ejercicios/{block}", s.handleAPIGet)
	mux.HandleFunc("PUT /api/ejercicios/{block}/campos/{field}", s.handleAPISetField)
	mux.HandleFunc("POST /api/ejercicios/{block}/comprobar", s.handleAPICheck)
	mux.HandleFunc("POST /api/ejercicios/{block}/reiniciar", s.handleAPIReset)
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return mux
}

// cors allows cross-origin API calls from the configured origins only.
func (s *Server) cors(next http.Handler) http.Handler {
	if len(s.origins) == 0 {
		return next
	}
	return handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.AllowCredentials(),
	)(next)
}
