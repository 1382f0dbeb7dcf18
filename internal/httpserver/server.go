package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storeadmin/backend/internal/config"
	"storeadmin/backend/internal/logging"
	addressusecase "storeadmin/backend/internal/usecase/address"
	authusecase "storeadmin/backend/internal/usecase/auth"
	userusecase "storeadmin/backend/internal/usecase/user"
)

// Services groups the use cases the HTTP layer exposes.
type Services struct {
	Auth      *authusecase.Service
	Users     *userusecase.Service
	Addresses *addressusecase.Service
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         chi.Router
	authService    *authusecase.Service
	userService    *userusecase.Service
	addressService *addressusecase.Service
	logger         *slog.Logger
	metrics        *metrics
	registry       *prometheus.Registry
	allowedOrigins []string
	addr           string
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request metrics into registry and serves them on /metrics.
func WithMetrics(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, services Services, opts ...Option) *Server {
	addr := cfg.Addr()

	srv := &Server{
		router:         chi.NewRouter(),
		authService:    services.Auth,
		userService:    services.Users,
		addressService: services.Addresses,
		logger:         logging.Discard(),
		allowedOrigins: cfg.AllowedOrigins,
		addr:           addr,
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.registry != nil {
		srv.metrics = newMetrics(srv.registry)
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.RealIP)
	srv.router.Use(srv.withLogging)
	srv.router.Use(srv.metrics.middleware)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(withCORS(cfg.AllowedOrigins))
	srv.registerRoutes()

	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}
	return srv
}

// Start bootstraps the HTTP server on the provided address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
