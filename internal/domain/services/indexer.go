package services

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/ports"
)

// Builder turns an entity collection into an immutable index snapshot.
// A build is one atomic batch pass: it either produces a complete snapshot
// or fails without publishing anything.
type Builder struct {
	tokenizer ports.Tokenizer
}

// NewBuilder creates an index builder using the given tokenizer. The same
// tokenizer must be used for querying.
func NewBuilder(tokenizer ports.Tokenizer) *Builder {
	return &Builder{tokenizer: tokenizer}
}

// Build validates the entities, derives a document per entity, and
// accumulates postings and corpus statistics. It is idempotent: the same
// input always produces a value-equal snapshot. The context is checked
// between documents so long builds can be cancelled; a cancelled build
// discards all partial state.
func (b *Builder) Build(ctx context.Context, input []entities.Entity) (*entities.Snapshot, error) {
	ents, err := validateEntities(input)
	if err != nil {
		return nil, err
	}

	docs, err := b.buildDocuments(ctx, ents)
	if err != nil {
		return nil, err
	}

	snap := &entities.Snapshot{
		Documents:      make(map[string]entities.Entity, len(ents)),
		Postings:       make(map[string]map[string][]entities.Posting),
		FieldLengths:   make(map[string]map[string]int),
		AvgFieldLength: make(map[string]float64),
		DocCount:       len(ents),
	}
	for _, field := range entities.Fields() {
		snap.Postings[field] = make(map[string][]entities.Posting)
		snap.FieldLengths[field] = make(map[string]int, len(ents))
	}

	totalLength := make(map[string]int)

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("index build cancelled: %w", err)
		}

		snap.Documents[doc.ID] = ents[i]

		for _, field := range entities.Fields() {
			terms := doc.Terms[field]
			snap.FieldLengths[field][doc.ID] = len(terms)
			totalLength[field] += len(terms)

			// Document frequency is incremented once per document
			// per term: one posting per (doc, field, term).
			freqs := make(map[string]int, len(terms))
			for _, term := range terms {
				freqs[term]++
			}
			for term, freq := range freqs {
				snap.Postings[field][term] = append(snap.Postings[field][term], entities.Posting{
					DocID:     doc.ID,
					Frequency: freq,
				})
			}
		}
	}

	// Documents are processed in id order, but finalize postings by
	// sorting anyway so the invariant never depends on processing order.
	for _, terms := range snap.Postings {
		for term := range terms {
			list := terms[term]
			sort.Slice(list, func(i, j int) bool { return list[i].DocID < list[j].DocID })
		}
	}

	if snap.DocCount > 0 {
		for _, field := range entities.Fields() {
			snap.AvgFieldLength[field] = float64(totalLength[field]) / float64(snap.DocCount)
		}
	}

	return snap, nil
}

// buildDocuments tokenizes entities concurrently. Results land in a slice
// indexed by input position, so the concurrency never affects the output.
func (b *Builder) buildDocuments(ctx context.Context, ents []entities.Entity) ([]entities.Document, error) {
	docs := make([]entities.Document, len(ents))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range ents {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = BuildDocument(ents[i], b.tokenizer)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("index build cancelled: %w", err)
	}
	return docs, nil
}

// validateEntities rejects records the index cannot represent: missing
// ids, missing types, duplicate ids. Any such record aborts the entire
// build. The returned slice is sorted by id for deterministic processing.
func validateEntities(input []entities.Entity) ([]entities.Entity, error) {
	seen := make(map[string]struct{}, len(input))
	ents := make([]entities.Entity, 0, len(input))

	for _, e := range input {
		if e.ID == "" {
			return nil, &entities.BuildError{Reason: "missing id"}
		}
		if e.Type == "" {
			return nil, &entities.BuildError{EntityID: e.ID, Reason: "missing type"}
		}
		if _, dup := seen[e.ID]; dup {
			return nil, &entities.BuildError{EntityID: e.ID, Reason: "duplicate id"}
		}
		seen[e.ID] = struct{}{}
		ents = append(ents, e)
	}

	sort.Slice(ents, func(i, j int) bool { return ents[i].ID < ents[j].ID })
	return ents, nil
}
