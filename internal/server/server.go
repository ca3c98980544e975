// Package server exposes the budeshi HTTP API: stateless chat resolution and
// read access to the project collection.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/budeshi/budeshi/internal/metrics"
	"github.com/budeshi/budeshi/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

// Deps wires the API. Metrics may be nil, in which case /metrics is not
// mounted.
type Deps struct {
	Projects  service.ProjectService
	Responder service.Responder
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

type Server struct {
	projects  service.ProjectService
	responder service.Responder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	engine    *gin.Engine
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		projects:  d.Projects,
		responder: d.Responder,
		metrics:   d.Metrics,
		logger:    d.Logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.observe())

	router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/chat", s.handleChat)

		v1.GET("/projects", s.handleListProjects)
		v1.GET("/projects/search", s.handleSearchProjects)
		v1.GET("/projects/:id", s.handleGetProject)

		v1.GET("/stats", s.handleStats)
		v1.GET("/facets", s.handleFacets)
		v1.GET("/export.csv", s.handleExportCSV)
	}
	return router
}

// observe logs every request and counts it by route template.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.ObserveRequest(c.Request.Method, c.FullPath(), status)
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(c.Request.Context(), level, "http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("api listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		s.logger.Info("api stopped")
		return nil
	})
	return g.Wait()
}
