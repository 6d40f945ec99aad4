package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/soundlens/spotify-pulse/internal/analytics"
	"github.com/soundlens/spotify-pulse/internal/spotify"
	"github.com/soundlens/spotify-pulse/internal/store"
	"github.com/soundlens/spotify-pulse/internal/trends"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Store        *store.Store
	Logger       *zap.Logger
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   *zap.Logger
}

// NewServer creates a new API server wired to the given store.
func NewServer(cfg ServerConfig) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// App-level client for the public trend synthesis; its token is
	// acquired lazily on the first trends request.
	appClient, err := spotify.New(spotify.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating app client: %w", err)
	}

	sessions := NewDBSessionStore(cfg.Store.Sessions(), cfg.Store.Users())
	analyticsSvc := analytics.NewService(cfg.Store.Analyses(), cfg.Store.Users(), logger)
	trendsSvc := trends.NewService(
		cfg.Store.Trends(),
		trends.NewSynthesizer(appClient, logger),
		logger,
	)

	handlers := NewHandlers(cfg, sessions, cfg.Store.Users(), analyticsSvc, trendsSvc, appClient, logger.Named("web"))

	router := chi.NewRouter()
	s := &Server{
		router:   router,
		handlers: handlers,
		logger:   logger.Named("web"),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the API.
func (s *Server) setupRoutes() {
	// Auth routes
	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/auth/logout", s.handlers.Logout)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/trends", s.handlers.Trends)
		r.Get("/analytics", s.handlers.Analytics)
		r.Get("/analytics/aggregate", s.handlers.AggregateAnalytics)
		r.Get("/me", s.handlers.Me)
		r.Route("/playlists/{playlistID}", func(r chi.Router) {
			r.Post("/refresh", s.handlers.RefreshPlaylist)
			r.Get("/analysis", s.handlers.PlaylistAnalysis)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// requestLogger logs one line per request with latency and status.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
