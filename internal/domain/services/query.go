package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/ports"
)

// queryCacheSize bounds the per-snapshot result cache.
const queryCacheSize = 512

// Engine executes ranked free-text queries against the current index
// snapshot. Serving is read-mostly: searches run lock-free against an
// immutable snapshot, and a rebuild swaps in a fully constructed
// replacement atomically. In-flight searches keep the snapshot they
// started with.
type Engine struct {
	tokenizer ports.Tokenizer
	builder   *Builder
	scorer    *Scorer
	state     atomic.Pointer[engineState]
}

// engineState pairs a snapshot with its result cache so cached results
// can never outlive the snapshot they were computed from.
type engineState struct {
	snap  *entities.Snapshot
	cache *lru.Cache[string, []entities.RankedResult]
}

// NewEngine creates a query engine. The tokenizer is shared with the
// index builder; query and index tokenization must never diverge.
func NewEngine(tokenizer ports.Tokenizer, scorer *Scorer) *Engine {
	return &Engine{
		tokenizer: tokenizer,
		builder:   NewBuilder(tokenizer),
		scorer:    scorer,
	}
}

// Build constructs a fresh snapshot from the entities, atomically makes
// it the current index, and returns it so callers can persist it. On
// build failure the previous snapshot, if any, stays in place untouched.
func (e *Engine) Build(ctx context.Context, input []entities.Entity) (*entities.Snapshot, error) {
	snap, err := e.builder.Build(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("rebuilding index: %w", err)
	}
	if err := e.Install(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Reload is Build for callers that do not need the snapshot value.
func (e *Engine) Reload(ctx context.Context, input []entities.Entity) error {
	_, err := e.Build(ctx, input)
	return err
}

// Install publishes an already built snapshot (for example one loaded
// from the snapshot store) as the current index.
func (e *Engine) Install(snap *entities.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", entities.ErrInvalidArgument)
	}
	cache, err := lru.New[string, []entities.RankedResult](queryCacheSize)
	if err != nil {
		return fmt.Errorf("creating query cache: %w", err)
	}
	e.state.Store(&engineState{snap: snap, cache: cache})
	return nil
}

// IsReady reports whether a snapshot has been installed. An empty corpus
// counts as ready: it answers every query with zero results.
func (e *Engine) IsReady() bool {
	return e.state.Load() != nil
}

// DocumentCount returns the number of documents in the current snapshot.
func (e *Engine) DocumentCount() int {
	state := e.state.Load()
	if state == nil {
		return 0
	}
	return state.snap.DocCount
}

// Search tokenizes the query, gathers candidates from the postings lists,
// scores them with BM25, and returns the topK results ranked by
// descending score with ascending-id tie-break. typeFilter, when
// non-empty, excludes mismatched entities before truncation so topK
// always reflects post-filter ranking.
//
// An empty or unmatched query returns an empty sequence. Searching before
// any snapshot is installed returns ErrNotReady so callers can tell "no
// matches" from "not initialized".
func (e *Engine) Search(queryText string, topK int, typeFilter entities.EntityType) ([]entities.RankedResult, error) {
	return e.SearchFiltered(queryText, topK, typeFilter, "")
}

// SearchFiltered is Search with per-call stopword filtering of the query
// terms. stopLang selects the stopword language ("de", "en"); the empty
// code disables filtering. Unknown codes are rejected as invalid
// arguments. Documents are indexed unfiltered, so a dropped query term
// simply stops contributing.
func (e *Engine) SearchFiltered(queryText string, topK int, typeFilter entities.EntityType, stopLang string) ([]entities.RankedResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", entities.ErrInvalidArgument, topK)
	}
	stopwords, ok := StopwordsFor(stopLang)
	if !ok {
		return nil, fmt.Errorf("%w: unknown stopword language %q", entities.ErrInvalidArgument, stopLang)
	}

	state := e.state.Load()
	if state == nil {
		return nil, entities.ErrNotReady
	}

	key := cacheKey(queryText, topK, typeFilter, stopLang)
	if results, ok := state.cache.Get(key); ok {
		return results, nil
	}

	tokenizer := NewFilteringTokenizer(e.tokenizer, stopwords)
	terms := distinctTerms(tokenizer.Tokenize(queryText))
	if len(terms) == 0 {
		return []entities.RankedResult{}, nil
	}

	scores := e.scorer.ScoreTerms(state.snap, terms)

	results := rankCandidates(state.snap, scores, topK, typeFilter)
	state.cache.Add(key, results)
	return results, nil
}

// rankCandidates filters, orders, and truncates the scored candidate set,
// assembling the full result payload for each surviving document.
func rankCandidates(snap *entities.Snapshot, scores map[string]float64, topK int, typeFilter entities.EntityType) []entities.RankedResult {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		if typeFilter != "" && snap.Documents[id].Type != typeFilter {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})

	if len(ids) > topK {
		ids = ids[:topK]
	}

	results := make([]entities.RankedResult, 0, len(ids))
	for _, id := range ids {
		doc := snap.Documents[id]
		results = append(results, entities.RankedResult{
			ID:              doc.ID,
			Type:            doc.Type,
			Description:     doc.Description,
			Facts:           doc.Facts,
			RelatedEntities: doc.RelatedEntities,
			Score:           scores[id],
		})
	}
	return results
}

func distinctTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	distinct := terms[:0:0]
	for _, term := range terms {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		distinct = append(distinct, term)
	}
	return distinct
}

func cacheKey(queryText string, topK int, typeFilter entities.EntityType, stopLang string) string {
	var b strings.Builder
	b.WriteString(queryText)
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(topK))
	b.WriteByte(0)
	b.WriteString(string(typeFilter))
	b.WriteByte(0)
	b.WriteString(stopLang)
	return b.String()
}
