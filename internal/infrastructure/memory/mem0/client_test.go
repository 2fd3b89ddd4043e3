package mem0

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token k", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		lastBody = nil
		_ = json.Unmarshal(raw, &lastBody)
		switch r.URL.Path {
		case "/v1/memories/":
			_, _ = w.Write([]byte(`[{"id":"m1","memory":"x","event":"ADD"}]`))
		case "/v2/memories/search/":
			_, _ = w.Write([]byte(`{"results":[
				{"id":"a","memory":"idea a","score":0.91,"metadata":{"type":"eliminated_idea"},"created_at":"2026-01-02T03:04:05Z"},
				{"id":"b","memory":"idea b","score":0.5,"metadata":{"type":"pending_idea"}}]}`))
		case "/v2/memories/":
			_, _ = w.Write([]byte(`[{"id":"c","memory":"listed"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "k", BaseURL: srv.URL + "/"}, logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	id, err := c.Add(ctx, entity.MemoryInput{Text: "x", UserID: "u", Metadata: map[string]any{"type": "t"}})
	require.NoError(t, err)
	assert.Equal(t, "m1", id)
	assert.Equal(t, "u", lastBody["user_id"])

	hits, err := c.Search(ctx, "idea", entity.SearchOptions{UserID: "u", Limit: 5, Filters: map[string]any{"type": "eliminated_idea"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, 0.91, hits[0].Score)
	assert.Equal(t, 2026, hits[0].CreatedAt.Year())
	assert.EqualValues(t, 5, lastBody["top_k"])

	list, err := c.List(ctx, entity.SearchOptions{UserID: "u"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "listed", list[0].Memory)
}

func TestClientErrors(t *testing.T) {
	_, err := New(Config{}, logger.NewNop())
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad token"}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "q", entity.SearchOptions{})
	assert.ErrorContains(t, err, "status 401")
}
