package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/services"
)

func newTestHandler(t *testing.T, input []entities.Entity) *SearchHandler {
	t.Helper()

	engine := services.NewEngine(
		services.NewUnicodeTokenizer(),
		services.NewScorer(services.DefaultParams(), services.DefaultFieldWeights()),
	)
	if input != nil {
		require.NoError(t, engine.Reload(context.Background(), input))
	}
	return NewSearchHandler(engine, 10, "")
}

func sampleCorpus() []entities.Entity {
	return []entities.Entity{
		{
			ID:          "Arivor",
			Type:        entities.TypePlace,
			Description: "Arivor ist die Hauptstadt von Almada.",
			Keywords:    []string{"Hauptstadt", "Almada"},
		},
		{
			ID:          "Almada",
			Type:        entities.TypePlace,
			Description: "Almada ist eine Provinz des Horasreichs.",
		},
		{
			ID:          "Theaterorden",
			Type:        entities.TypeGroup,
			Description: "Ein Ritterorden mit Sitz in Arivor.",
		},
	}
}

func TestSearchHandler_Handle(t *testing.T) {
	h := newTestHandler(t, sampleCorpus())

	result, err := h.Handle("Hauptstadt Almada", 5, "", "")
	require.NoError(t, err)

	assert.Equal(t, "Hauptstadt Almada", result.Query)
	assert.Equal(t, 5, result.TopK)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "Arivor", result.Results[0].ID)
}

func TestSearchHandler_Handle_DefaultTopK(t *testing.T) {
	h := newTestHandler(t, sampleCorpus())

	result, err := h.Handle("Arivor", 0, "", "")
	require.NoError(t, err)
	assert.Equal(t, 10, result.TopK)
}

func TestSearchHandler_Handle_NegativeTopK(t *testing.T) {
	h := newTestHandler(t, sampleCorpus())

	result, err := h.Handle("Arivor", -3, "", "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}

func TestSearchHandler_Handle_TypeFilter(t *testing.T) {
	h := newTestHandler(t, sampleCorpus())

	// Filters are normalized the same way entity types are, so mixed
	// case works.
	result, err := h.Handle("Arivor", 0, "GROUP", "")
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Theaterorden", result.Results[0].ID)
}

func TestSearchHandler_Handle_Stopwords(t *testing.T) {
	engine := services.NewEngine(
		services.NewUnicodeTokenizer(),
		services.NewScorer(services.DefaultParams(), services.DefaultFieldWeights()),
	)
	require.NoError(t, engine.Reload(context.Background(), sampleCorpus()))
	h := NewSearchHandler(engine, 10, "de")

	assert.Equal(t, "de", h.Stopwords())

	// The configured default filters function words out of the query.
	result, err := h.Handle("von", 0, "", "")
	require.NoError(t, err)
	assert.Equal(t, "de", result.Stopwords)
	assert.Empty(t, result.Results)

	// "none" explicitly disables the default.
	result, err = h.Handle("von", 0, "", "none")
	require.NoError(t, err)
	assert.Equal(t, "", result.Stopwords)
	assert.NotEmpty(t, result.Results)

	// A per-call language overrides the default.
	result, err = h.Handle("the Hauptstadt", 0, "", "en")
	require.NoError(t, err)
	assert.Equal(t, "en", result.Stopwords)
	assert.NotEmpty(t, result.Results)

	// Unknown languages surface as invalid arguments.
	_, err = h.Handle("Hauptstadt", 0, "", "xx")
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}

func TestSearchHandler_Handle_NotReady(t *testing.T) {
	h := newTestHandler(t, nil)

	assert.False(t, h.Ready())

	result, err := h.Handle("Arivor", 0, "", "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, entities.ErrNotReady)
}

func TestSearchHandler_HandleReload(t *testing.T) {
	h := newTestHandler(t, sampleCorpus())
	require.Equal(t, 3, h.Documents())

	err := h.HandleReload(context.Background(), []entities.Entity{
		{ID: "Neuland", Type: entities.TypePlace, Description: "Ein frisch entdecktes Land."},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, h.Documents())

	result, err := h.Handle("Neuland", 0, "", "")
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Neuland", result.Results[0].ID)
}

func TestSearchHandler_HandleReload_Invalid(t *testing.T) {
	h := newTestHandler(t, sampleCorpus())

	err := h.HandleReload(context.Background(), []entities.Entity{{Description: "kaputt"}})
	assert.ErrorIs(t, err, entities.ErrBuildFailure)

	// The previous corpus keeps serving.
	assert.Equal(t, 3, h.Documents())
}
