package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/api"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	deps   *Dependencies
	logger zerolog.Logger
}

// New builds every collaborator from cfg and mounts the API on a fresh router.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Server, error) {
	deps, err := Build(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	router := NewRouter(deps.Services, cfg.CORSOrigins)
	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		deps:   deps,
		logger: logging.With("server"),
	}, nil
}

// NewRouter creates the gin engine with the shared middleware, /metrics and the API routes.
func NewRouter(svc api.Services, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.Recovery(),
		middleware.CORS(corsOrigins),
	)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api.RegisterRoutes(router, svc)
	return router
}

// Router exposes the handler, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close releases the collaborators without serving. Run closes them itself.
func (s *Server) Close() error {
	return s.deps.Close()
}

// Run serves until ctx is cancelled, then drains in-flight requests and releases the
// collaborators.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("starting server")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			_ = s.deps.Close()
			return err
		}
		return s.deps.Close()
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	return errors.Join(err, s.deps.Close())
}
