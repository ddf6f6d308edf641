package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/atikulmunna/skein/internal/hub"
	"github.com/atikulmunna/skein/internal/service"
	"github.com/atikulmunna/skein/internal/settings"
)

// LogReader is the parse pipeline as the HTTP layer sees it.
type LogReader interface {
	Logs(ctx context.Context) (service.LogsResponse, error)
	Summary(ctx context.Context) (service.SummaryResponse, error)
}

// Options configures the HTTP listener.
type Options struct {
	Port           int
	AllowedOrigins []string
}

// Server holds the Gin engine and dependencies for the JSON API.
type Server struct {
	engine         *gin.Engine
	logs           LogReader
	settings       settings.Store
	hub            *hub.Hub
	port           int
	allowedOrigins []string
	started        time.Time
}

// New creates the API server. h may be nil, in which case /ws is not mounted.
func New(logs LogReader, store settings.Store, h *hub.Hub, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		requestID(),
		accessLog(),
		corsConfig(opts.AllowedOrigins),
	)

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:         engine,
		logs:           logs,
		settings:       store,
		hub:            h,
		port:           opts.Port,
		allowedOrigins: opts.AllowedOrigins,
		started:        time.Now(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check.
	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("/logs", s.handleLogs)
		api.GET("/summary", s.handleSummary)
		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handlePutSettings)
	}

	// WebSocket.
	if s.hub != nil {
		s.engine.GET("/ws", s.handleWebSocket)
	}

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	s.engine.GET("/debug/pprof/allocs", gin.WrapH(pprof.Handler("allocs")))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// Handler exposes the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) uptime() time.Duration {
	return time.Since(s.started).Round(time.Second)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
