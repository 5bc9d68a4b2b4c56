package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-index/internal/application/handlers"
	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/services"
	"github.com/ersonp/lore-index/internal/infrastructure/config"
	"github.com/ersonp/lore-index/internal/infrastructure/metrics"
)

func newTestServer(t *testing.T, input []entities.Entity) *Server {
	t.Helper()

	engine := services.NewEngine(
		services.NewUnicodeTokenizer(),
		services.NewScorer(services.DefaultParams(), services.DefaultFieldWeights()),
	)
	if input != nil {
		require.NoError(t, engine.Reload(context.Background(), input))
	}

	return New(
		config.ServerConfig{Host: "127.0.0.1", Port: 0},
		handlers.NewSearchHandler(engine, 10, "de"),
		metrics.New(prometheus.NewRegistry()),
		zerolog.Nop(),
	)
}

func serverCorpus() []entities.Entity {
	return []entities.Entity{
		{
			ID:          "Arivor",
			Type:        entities.TypePlace,
			Description: "Arivor ist die Hauptstadt von Almada.",
			Keywords:    []string{"Hauptstadt", "Almada"},
		},
		{
			ID:          "Theaterorden",
			Type:        entities.TypeGroup,
			Description: "Ein Ritterorden mit Sitz in Arivor.",
		},
	}
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestServer_Search(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	rec := doJSON(s, http.MethodPost, "/search", `{"query": "Hauptstadt Almada", "topk": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hauptstadt Almada", resp.Query)
	assert.Equal(t, 5, resp.TopK)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Arivor", resp.Results[0].ID)
	assert.Greater(t, resp.Results[0].Score, 0.0)
}

func TestServer_Search_DefaultTopK(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	rec := doJSON(s, http.MethodPost, "/search", `{"query": "Arivor"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.TopK)
}

func TestServer_Search_TypeFilter(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	rec := doJSON(s, http.MethodPost, "/search", `{"query": "Arivor", "type": "group"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Theaterorden", resp.Results[0].ID)
}

func TestServer_Search_InvalidTopK(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	rec := doJSON(s, http.MethodPost, "/search", `{"query": "Arivor", "topk": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestServer_Search_NotReady(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(s, http.MethodPost, "/search", `{"query": "Arivor"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Search_MalformedBody(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	rec := doJSON(s, http.MethodPost, "/search", `{"query": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	rec := doJSON(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, true, resp["ready"])
	assert.Equal(t, float64(2), resp["documents"])
	assert.Equal(t, "de", resp["default_stopwords"])
}

func TestServer_Search_Stopwords(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	// The configured default ("de") drops the function-word query.
	rec := doJSON(s, http.MethodPost, "/search", `{"query": "von"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "de", resp.Stopwords)
	assert.Empty(t, resp.Results)

	// A request can disable filtering explicitly.
	rec = doJSON(s, http.MethodPost, "/search", `{"query": "von", "stopwords": "none"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "", resp.Stopwords)
	assert.NotEmpty(t, resp.Results)

	// Unknown languages are rejected.
	rec = doJSON(s, http.MethodPost, "/search", `{"query": "Arivor", "stopwords": "xx"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Reload(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	corpus := `{"Neuland": {"type": "place", "description": "Ein frisch entdecktes Land."}}`
	rec := doJSON(s, http.MethodPost, "/reload", corpus)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["documents"])

	// The new corpus is live immediately.
	rec = doJSON(s, http.MethodPost, "/search", `{"query": "Neuland"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var search searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Len(t, search.Results, 1)
	assert.Equal(t, "Neuland", search.Results[0].ID)
}

func TestServer_Reload_InvalidCorpus(t *testing.T) {
	s := newTestServer(t, serverCorpus())

	rec := doJSON(s, http.MethodPost, "/reload", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Entities without ids come through the parser but fail the build.
	rec = doJSON(s, http.MethodPost, "/reload", `{"": {"type": "place", "description": "kaputt"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The old corpus keeps serving either way.
	rec = doJSON(s, http.MethodPost, "/search", `{"query": "Arivor"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid argument", err: entities.ErrInvalidArgument, want: http.StatusBadRequest},
		{name: "not ready", err: entities.ErrNotReady, want: http.StatusServiceUnavailable},
		{name: "build failure", err: &entities.BuildError{Reason: "missing id"}, want: http.StatusUnprocessableEntity},
		{name: "unknown", err: assert.AnError, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
