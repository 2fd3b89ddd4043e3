package local

import (
	"context"
	"path/filepath"
	"testing"

	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mem", "memory.db"), logger.NewNop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixedEmbedder map[string][]float32

func (f fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f[t]
	}
	return out, nil
}

func TestStore_AddAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, entity.MemoryInput{Text: "first", UserID: "u", Metadata: map[string]any{"type": "pending_idea", "score": 4}})
	require.NoError(t, err)
	_, err = s.Add(ctx, entity.MemoryInput{Text: "second", UserID: "u", Metadata: map[string]any{"type": "eliminated_idea"}})
	require.NoError(t, err)
	_, err = s.Add(ctx, entity.MemoryInput{Text: "other user", UserID: "v"})
	require.NoError(t, err)

	all, err := s.List(ctx, entity.SearchOptions{UserID: "u"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := s.List(ctx, entity.SearchOptions{UserID: "u", Filters: map[string]any{"type": "pending_idea", "score": 4}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "first", pending[0].Memory)
	score, ok := pending[0].MetaFloat("score")
	assert.True(t, ok)
	assert.Equal(t, 4.0, score)

	_, err = s.Add(ctx, entity.MemoryInput{Text: "  "})
	assert.Error(t, err)
}

func TestStore_SearchTokenOverlap(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, entity.MemoryInput{Text: "AI scheduling assistant for dentists", UserID: "u"})
	_, _ = s.Add(ctx, entity.MemoryInput{Text: "Marketplace for used bikes", UserID: "u"})

	hits, err := s.Search(ctx, "scheduling for dentists", entity.SearchOptions{UserID: "u", Limit: 5})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "AI scheduling assistant for dentists", hits[0].Memory)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestStore_SearchEmbeddings(t *testing.T) {
	emb := fixedEmbedder{
		"a":     {1, 0},
		"b":     {0, 1},
		"query": {0.9, 0.1},
	}
	s := openStore(t, WithEmbedder(emb))
	ctx := context.Background()

	_, _ = s.Add(ctx, entity.MemoryInput{Text: "a"})
	_, _ = s.Add(ctx, entity.MemoryInput{Text: "b"})

	hits, err := s.Search(ctx, "query", entity.SearchOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Memory)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}
