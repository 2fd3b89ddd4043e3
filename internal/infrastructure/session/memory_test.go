package session

import (
	"context"
	"testing"

	"ideation-orchestrator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	history := []entity.Message{
		{Role: entity.RoleUser, Content: "hi"},
		{Role: entity.RoleAssistant, ToolCalls: []entity.ToolCall{{ID: "1"}}},
	}
	require.NoError(t, s.Save(ctx, "t1", history))

	history[0].Content = "changed"
	history[1].ToolCalls[0].ID = "changed"

	got, ok, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, "1", got[1].ToolCalls[0].ID)

	got[0].Content = "mutated"
	again, _, _ := s.Load(ctx, "t1")
	assert.Equal(t, "hi", again[0].Content)

	_, ok, err = s.Load(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
