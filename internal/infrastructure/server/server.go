// Package server exposes the search engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ersonp/lore-index/internal/application/handlers"
	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/infrastructure/config"
	"github.com/ersonp/lore-index/internal/infrastructure/metrics"
	"github.com/ersonp/lore-index/internal/infrastructure/parsers"
)

// Server serves ranked queries over HTTP: POST /search, GET /health,
// GET /metrics, POST /reload.
type Server struct {
	echo    *echo.Echo
	handler *handlers.SearchHandler
	metrics *metrics.Metrics
	log     zerolog.Logger
	addr    string
}

// New creates the HTTP server around a search handler.
func New(cfg config.ServerConfig, handler *handlers.SearchHandler, m *metrics.Metrics, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		handler: handler,
		metrics: m,
		log:     log,
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}

	e.POST("/search", s.handleSearch)
	e.POST("/reload", s.handleReload)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.addr)
	}()

	s.log.Info().Str("addr", s.addr).Msg("search server listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topk"`
	Type  string `json:"type"`
	// Stopwords overrides the configured stopword language for this
	// query; "none" disables filtering.
	Stopwords string `json:"stopwords"`
}

type searchResponse struct {
	Query     string                  `json:"query"`
	TopK      int                     `json:"topk"`
	Stopwords string                  `json:"stopwords"`
	Results   []entities.RankedResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	start := time.Now()
	result, err := s.handler.Handle(req.Query, req.TopK, req.Type, req.Stopwords)
	s.metrics.SearchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.SearchesTotal.With(prometheus.Labels{"status": "error"}).Inc()
		s.log.Warn().Err(err).Str("query", req.Query).Msg("search failed")
		return c.JSON(statusForError(err), errorResponse{Error: err.Error()})
	}

	s.metrics.SearchesTotal.With(prometheus.Labels{"status": "ok"}).Inc()
	s.log.Debug().
		Str("query", req.Query).
		Int("topk", result.TopK).
		Int("results", len(result.Results)).
		Dur("duration", time.Since(start)).
		Msg("search served")

	return c.JSON(http.StatusOK, searchResponse{
		Query:     result.Query,
		TopK:      result.TopK,
		Stopwords: result.Stopwords,
		Results:   result.Results,
	})
}

// handleReload rebuilds the index from a corpus posted as the standard
// id-to-entity JSON mapping.
func (s *Server) handleReload(c echo.Context) error {
	parser := parsers.ForFormat("json")
	ents, err := parser.Parse(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	if err := s.handler.HandleReload(c.Request().Context(), ents); err != nil {
		s.log.Error().Err(err).Msg("reload failed")
		return c.JSON(statusForError(err), errorResponse{Error: err.Error()})
	}

	s.metrics.RebuildsTotal.Inc()
	s.metrics.DocumentsIndexed.Set(float64(s.handler.Documents()))
	s.log.Info().Int("documents", s.handler.Documents()).Msg("index reloaded")

	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.handler.Documents(),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":            "ok",
		"ready":             s.handler.Ready(),
		"documents":         s.handler.Documents(),
		"default_stopwords": s.handler.Stopwords(),
	})
}

// statusForError maps engine error kinds to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, entities.ErrBuildFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
