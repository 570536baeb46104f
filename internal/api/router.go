package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/borrowez/borrowez/internal/auth"
	"github.com/borrowez/borrowez/internal/catalog"
	"github.com/borrowez/borrowez/internal/ledger"
	"github.com/borrowez/borrowez/internal/ratelimit"
)

// maxBodyBytes bounds request bodies. Image size is checked separately.
const maxBodyBytes = 1 << 20

// Server holds the services behind the HTTP API.
type Server struct {
	auth    *auth.Service
	catalog *catalog.Service
	ledger  *ledger.Service
	limiter *ratelimit.KeyedLimiter
	logger  *slog.Logger
}

// NewServer creates the API server.
func NewServer(authSvc *auth.Service, catalogSvc *catalog.Service, ledgerSvc *ledger.Service, limiter *ratelimit.KeyedLimiter, logger *slog.Logger) *Server {
	return &Server{
		auth:    authSvc,
		catalog: catalogSvc,
		ledger:  ledgerSvc,
		limiter: limiter,
		logger:  logger,
	}
}

// Router returns the HTTP handler with all endpoints registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.AccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.With(s.RateLimit).Post("/register", s.handleRegister)
			r.With(s.RateLimit).Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Get("/{id}", s.handleGetItem)
			r.Put("/{id}", s.handleUpdateItem)
			r.Delete("/{id}", s.handleDeleteItem)
			r.Get("/{id}/image", s.handleItemImage)
			r.Post("/{id}/borrow", s.handleRequestBorrow)
		})

		r.Route("/borrows", func(r chi.Router) {
			r.Get("/{id}", s.handleGetBorrow)
			r.Put("/{id}/status", s.handleAdvanceBorrow)
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/items", s.handleMyItems)
			r.Get("/borrows", s.handleMyBorrows)
			r.Get("/lendings", s.handleMyLendings)
			r.Get("/history", s.handleMyHistory)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
