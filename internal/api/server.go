package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/gatherkit/registrar/internal/importer"
	"github.com/gatherkit/registrar/internal/registration"
)

// =============================================================================
// HTTP SERVER
// =============================================================================
// Routes the attendee-import API. Every import operation is scoped to one
// event and authorized against the organizer submitting the request.

// EventGetter loads the event an import request targets.
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*registration.Event, error)
}

// MappingStore remembers the last confirmed field mapping per organizer and
// event. A nil store disables mapping memory.
type MappingStore interface {
	Get(ctx context.Context, eventID, organizerID uuid.UUID) (importer.FieldMapping, error)
	Put(ctx context.Context, eventID, organizerID uuid.UUID, mapping importer.FieldMapping) error
}

// Server is the import API server.
type Server struct {
	events    EventGetter
	validator *importer.Validator
	executor  *importer.Executor
	mappings  MappingStore
	server    *http.Server
}

// NewServer creates the API server. mappings may be nil when the saved-mapping
// cache is not configured.
func NewServer(events EventGetter, validator *importer.Validator, executor *importer.Executor, mappings MappingStore) *Server {
	return &Server{events: events, validator: validator, executor: executor, mappings: mappings}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://app.gatherkit.io", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Organizer-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Field reference and template download are not event-scoped.
		r.Get("/import/fields", s.handleImportFields)
		r.Get("/import/template", s.handleImportTemplate)

		r.Route("/events/{eventID}/import", func(r chi.Router) {
			r.Post("/parse", s.handleParse)
			r.Post("/validate", s.handleValidate)
			r.Post("/execute", s.handleExecute)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// authorizeEvent resolves the target event and checks the caller owns it.
// Writes the error response itself when authorization fails.
func (s *Server) authorizeEvent(w http.ResponseWriter, r *http.Request) (*registration.Event, uuid.UUID, bool) {
	organizerID, err := uuid.Parse(r.Header.Get("X-Organizer-ID"))
	if err != nil {
		writeError(w, "missing or invalid X-Organizer-ID header", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, "invalid event ID", http.StatusBadRequest)
		return nil, uuid.Nil, false
	}

	event, err := s.events.GetEvent(r.Context(), eventID)
	if err == registration.ErrEventNotFound {
		writeError(w, "event not found", http.StatusNotFound)
		return nil, uuid.Nil, false
	}
	if err != nil {
		writeError(w, "failed to load event", http.StatusInternalServerError)
		return nil, uuid.Nil, false
	}

	if event.OrganizerID != organizerID {
		writeError(w, "you do not have access to this event", http.StatusForbidden)
		return nil, uuid.Nil, false
	}

	return event, organizerID, true
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
		// Uploads arrive as request bodies, so the read timeout covers the
		// largest accepted file on a slow connection.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
