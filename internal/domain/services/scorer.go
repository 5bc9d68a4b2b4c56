package services

import (
	"math"

	"github.com/ersonp/lore-index/internal/domain/entities"
)

// Standard BM25 constants.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Params are the tunable BM25 constants: k1 controls term-frequency
// saturation, b controls field-length normalization.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns the standard BM25 defaults.
func DefaultParams() Params {
	return Params{K1: DefaultK1, B: DefaultB}
}

// DefaultFieldWeights returns the static per-field multipliers. A keyword
// or explicit relation match is a stronger relevance signal than a
// description mention.
func DefaultFieldWeights() map[string]float64 {
	return map[string]float64{
		entities.FieldDescription:     1.0,
		entities.FieldFacts:           1.0,
		entities.FieldKeywords:        1.5,
		entities.FieldRelatedEntities: 1.2,
		entities.FieldType:            0.5,
	}
}

// Scorer computes weighted BM25 relevance against a snapshot's statistics.
// Scoring is a pure computation over read-only data, safe for any number
// of concurrent callers.
type Scorer struct {
	params  Params
	weights map[string]float64
}

// NewScorer creates a scorer with the given constants and field weights.
// Fields absent from weights score with weight 0.
func NewScorer(params Params, weights map[string]float64) *Scorer {
	return &Scorer{params: params, weights: weights}
}

// TermScore returns the BM25 contribution of one term occurrence set in
// one field of one document:
//
//	idf = ln((N - df + 0.5) / (df + 0.5) + 1)
//	tf' = tf*(k1+1) / (tf + k1*(1 - b + b*len/avgLen))
//
// A term with zero document frequency contributes zero.
func (s *Scorer) TermScore(tf, fieldLength int, avgFieldLength float64, docFreq, docCount int) float64 {
	if tf == 0 || docFreq == 0 || docCount == 0 {
		return 0
	}

	idf := math.Log((float64(docCount)-float64(docFreq)+0.5)/(float64(docFreq)+0.5) + 1)

	norm := 1.0
	if avgFieldLength > 0 {
		norm = 1 - s.params.B + s.params.B*(float64(fieldLength)/avgFieldLength)
	}
	tfComponent := (float64(tf) * (s.params.K1 + 1)) / (float64(tf) + s.params.K1*norm)

	return idf * tfComponent
}

// ScoreTerms accumulates, per document, the weighted BM25 score of the
// given query terms across all fields of the snapshot. The result map
// contains every candidate document matched by at least one (field, term)
// pair; terms absent from the index are skipped.
func (s *Scorer) ScoreTerms(snap *entities.Snapshot, terms []string) map[string]float64 {
	scores := make(map[string]float64)

	for _, term := range terms {
		for _, field := range entities.Fields() {
			weight := s.weights[field]
			if weight == 0 {
				continue
			}

			postings := snap.PostingsFor(field, term)
			if len(postings) == 0 {
				continue
			}
			docFreq := len(postings)

			for _, p := range postings {
				contribution := s.TermScore(
					p.Frequency,
					snap.FieldLengths[field][p.DocID],
					snap.AvgFieldLength[field],
					docFreq,
					snap.DocCount,
				)
				scores[p.DocID] += weight * contribution
			}
		}
	}

	return scores
}
