// Package handlers exposes the engine's operations to transports and the CLI.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/services"
)

// SearchHandler is the synchronous query interface exposed to
// collaborators: search, reload, readiness. Transport framing is layered
// on top of it.
type SearchHandler struct {
	engine           *services.Engine
	defaultTopK      int
	defaultStopwords string
}

// NewSearchHandler creates a search handler. defaultTopK and
// defaultStopwords are used when a caller does not specify them.
func NewSearchHandler(engine *services.Engine, defaultTopK int, defaultStopwords string) *SearchHandler {
	return &SearchHandler{
		engine:           engine,
		defaultTopK:      defaultTopK,
		defaultStopwords: defaultStopwords,
	}
}

// SearchResult is the payload returned for one query.
type SearchResult struct {
	Query     string
	TopK      int
	Stopwords string
	Results   []entities.RankedResult
}

// Handle runs a ranked search. topK = 0 means "use the configured
// default"; negative values are rejected by the engine. stopwords selects
// the query-side stopword language: empty means the configured default,
// "none" explicitly disables filtering.
func (h *SearchHandler) Handle(query string, topK int, typeFilter, stopwords string) (*SearchResult, error) {
	if topK == 0 {
		topK = h.defaultTopK
	}
	stopLang := h.resolveStopwords(stopwords)

	var filter entities.EntityType
	if typeFilter != "" {
		filter = entities.NormalizeType(typeFilter)
	}

	results, err := h.engine.SearchFiltered(query, topK, filter, stopLang)
	if err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}

	return &SearchResult{
		Query:     query,
		TopK:      topK,
		Stopwords: stopLang,
		Results:   results,
	}, nil
}

func (h *SearchHandler) resolveStopwords(requested string) string {
	switch requested {
	case "":
		return h.defaultStopwords
	case "none":
		return ""
	default:
		return requested
	}
}

// HandleReload rebuilds the index from a new entity collection and swaps
// it in atomically.
func (h *SearchHandler) HandleReload(ctx context.Context, input []entities.Entity) error {
	if err := h.engine.Reload(ctx, input); err != nil {
		return fmt.Errorf("reloading index: %w", err)
	}
	return nil
}

// Ready reports whether the engine can serve queries.
func (h *SearchHandler) Ready() bool {
	return h.engine.IsReady()
}

// Documents returns the number of indexed documents.
func (h *SearchHandler) Documents() int {
	return h.engine.DocumentCount()
}

// Stopwords returns the configured default stopword language.
func (h *SearchHandler) Stopwords() string {
	return h.defaultStopwords
}
