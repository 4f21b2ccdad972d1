// Package httpapi is the HTTP JSON transport (spec.md §6) wired on top of
// internal/flows and internal/usecases. It owns the chi router, session
// cookie and bearer-token handling, JSON (de)serialization, and CSV export,
// and maps the ofdberrors taxonomy to status codes per spec.md §7.
// Grounded on the teacher's internal/api/server.go: a Server struct built by
// New(...), a Router() method returning http.Handler, and a small
// writeJSON helper — generalized from one GitHub webhook route to the full
// civic-map route set.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"civicmap/internal/authsvc"
	"civicmap/internal/flows"
	"civicmap/internal/geocode"
	"civicmap/internal/repo"
	"civicmap/internal/searchindex"
	"civicmap/internal/usecases"
)

// Version is the server version string reported by GET /server/version,
// overridable at link time the way the teacher's own build metadata is.
var Version = "dev"

// Server bundles every dependency the HTTP layer needs to serve the civic
// map API. Every field is constructed once in main and injected here,
// mirroring the teacher's own construct-and-inject style.
type Server struct {
	Places  flows.Places
	Events  flows.Events
	Users   usecases.Users
	Ratings usecases.Ratings

	PlaceRepo repo.PlaceRepo
	TagRepo   repo.TagRepo
	Category  repo.CategoryRepo
	Org       repo.OrganizationRepo
	Subs      repo.BboxSubscriptionRepo

	Index   searchindex.Index
	Geocode geocode.Gateway
	Session *authsvc.SessionCodec

	EnableCORS bool
	Log        *zap.Logger
}

// New builds a Server. logger defaults to a no-op logger if nil, matching
// the teacher's New(cfg, app, st, logger) nil-guard.
func New(s Server) *Server {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	srv := s
	return &srv
}

// Router builds the chi route tree: request id/real-ip/recoverer on every
// route (teacher's chi import brings middleware along for free), optional
// permissive CORS gated by EnableCORS (spec.md §6 "enable_cors"), and the
// full /api/v0 surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(zapRequestLogger(s.Log))
	r.Use(middleware.Recoverer)

	if s.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
			AllowCredentials: false,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v0", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/users", s.handleRegister)
		r.Post("/confirm-email-address", s.handleConfirmEmail)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", s.handleCreatePlace)
			r.Get("/{id}", s.handleGetPlace)
			r.Put("/{id}", s.handleUpdatePlace)
		})
		r.Get("/duplicates", s.handleDuplicates)
		r.Get("/search", s.handleSearch)
		r.Get("/tags", s.handleListTags)
		r.Get("/categories", s.handleListCategories)
		r.Get("/categories/{ids}", s.handleGetCategories)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleQueryEvents)
			r.Post("/", s.handleCreateEvent)
			r.Get("/{id}", s.handleGetEvent)
			r.Put("/{id}", s.handleUpdateEvent)
			r.Delete("/{id}", s.handleDeleteEvent)
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Post("/", s.handleCreateRating)
			r.Get("/{id}", s.handleGetRating)
		})

		r.Post("/subscribe-to-bbox", s.handleSubscribeToBbox)
		r.Delete("/unsubscribe-all-bboxes", s.handleUnsubscribeAll)
		r.Get("/bbox-subscriptions", s.handleListSubscriptions)

		r.Get("/count/entries", s.handleCountEntries)
		r.Get("/count/tags", s.handleCountTags)

		r.Get("/server/version", s.handleServerVersion)
		r.Get("/server/api.yaml", s.handleServerAPIYAML)

		r.Get("/export/entries.csv", s.handleExportEntriesCSV)
	})

	return r
}

func zapRequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			log.Debug("request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", middleware.GetReqID(req.Context())),
			)
		})
	}
}
