package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-index/internal/domain/entities"
)

func TestScorer_TermScore(t *testing.T) {
	scorer := NewScorer(DefaultParams(), DefaultFieldWeights())

	t.Run("matches the reference formula", func(t *testing.T) {
		// tf=2, len=10, avg=8, df=3, N=100
		idf := math.Log((100-3+0.5)/(3+0.5) + 1)
		norm := 1 - 0.75 + 0.75*(10.0/8.0)
		expected := idf * (2 * (1.2 + 1)) / (2 + 1.2*norm)

		got := scorer.TermScore(2, 10, 8, 3, 100)
		assert.InDelta(t, expected, got, 1e-12)
	})

	t.Run("zero document frequency contributes nothing", func(t *testing.T) {
		assert.Zero(t, scorer.TermScore(2, 10, 8, 0, 100))
	})

	t.Run("empty corpus contributes nothing", func(t *testing.T) {
		assert.Zero(t, scorer.TermScore(2, 10, 8, 0, 0))
	})

	t.Run("zero average length disables normalization", func(t *testing.T) {
		// A field nobody has terms in can still be scored without
		// dividing by zero.
		got := scorer.TermScore(1, 0, 0, 1, 2)
		assert.False(t, math.IsNaN(got))
		assert.False(t, math.IsInf(got, 0))
	})

	t.Run("idf stays positive even when df equals N", func(t *testing.T) {
		assert.Greater(t, scorer.TermScore(1, 5, 5, 100, 100), 0.0)
	})
}

// Raising k1 must not let a low-frequency document overtake a
// high-frequency one for the same term.
func TestScorer_K1Monotonicity(t *testing.T) {
	for _, k1 := range []float64{0.5, 1.2, 2.0, 5.0} {
		scorer := NewScorer(Params{K1: k1, B: DefaultB}, DefaultFieldWeights())

		high := scorer.TermScore(5, 10, 10, 2, 100)
		low := scorer.TermScore(1, 10, 10, 2, 100)

		assert.Greater(t, high, low, "k1=%v", k1)
	}
}

func TestScorer_ScoreTerms(t *testing.T) {
	builder := NewBuilder(NewUnicodeTokenizer())
	snap, err := builder.Build(context.Background(), testEntities())
	require.NoError(t, err)

	scorer := NewScorer(DefaultParams(), DefaultFieldWeights())

	t.Run("unseen terms are skipped", func(t *testing.T) {
		scores := scorer.ScoreTerms(snap, []string{"nirgendwo"})
		assert.Empty(t, scores)
	})

	t.Run("candidates are the union across fields", func(t *testing.T) {
		scores := scorer.ScoreTerms(snap, []string{"arivor"})
		// Two description matches, a facts match for Almada, and a
		// related-entity match for Theaterorden: the candidate set is
		// the union over all fields.
		assert.Len(t, scores, 3)
		for id, score := range scores {
			assert.Greater(t, score, 0.0, "doc %s", id)
		}
	})

	t.Run("keyword match outweighs description match", func(t *testing.T) {
		scores := scorer.ScoreTerms(snap, []string{"hauptstadt"})
		// Both documents mention the term once in prose-sized fields,
		// but only Arivor carries it as a keyword.
		assert.Greater(t, scores["Arivor"], scores["Almada"])
	})
}

func TestScorer_ZeroWeightFieldIgnored(t *testing.T) {
	builder := NewBuilder(NewUnicodeTokenizer())
	snap, err := builder.Build(context.Background(), testEntities())
	require.NoError(t, err)

	weights := map[string]float64{entities.FieldKeywords: 1.0}
	scorer := NewScorer(DefaultParams(), weights)

	scores := scorer.ScoreTerms(snap, []string{"arivor"})
	// "arivor" occurs in descriptions, facts, and related entities, and
	// none of those fields carry weight here.
	assert.Empty(t, scores)
}
