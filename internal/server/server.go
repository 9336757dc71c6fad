// Package server wires the HTTP API: auth, consultation management, chat
// turns, and report export.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"medibot-ai/internal/auth"
	"medibot-ai/internal/consultation"
	"medibot-ai/internal/report"
)

type Server struct {
	users    *auth.FileStore
	sessions *auth.SessionManager
	svc      *consultation.Service
	reports  *report.Service
	logger   *slog.Logger
	router   chi.Router
}

func New(
	users *auth.FileStore,
	sessions *auth.SessionManager,
	svc *consultation.Service,
	reports *report.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		users:    users,
		sessions: sessions,
		svc:      svc,
		reports:  reports,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/auth/logout", s.handleLogout)

			r.Get("/consultations", s.handleListConsultations)
			r.Post("/consultations", s.handleCreateConsultation)
			r.Post("/consultations/switch", s.handleSwitchConsultation)
			r.Post("/consultations/rename", s.handleRenameConsultation)
			r.Get("/consultations/active", s.handleActiveConsultation)
			r.Post("/consultations/message", s.handleMessage)
			r.Get("/consultations/report", s.handleReport)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// corsMiddleware allows the browser frontend to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}
