package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore returns records newest first; Search scores every record with
// searchScore.
type fakeStore struct {
	mu          sync.Mutex
	recs        []entity.MemoryRecord
	searchScore float64
}

func (f *fakeStore) Add(ctx context.Context, in entity.MemoryInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("m%d", len(f.recs)+1)
	rec := entity.MemoryRecord{ID: id, Memory: in.Text, UserID: in.UserID, Metadata: in.Metadata, CreatedAt: time.Now()}
	f.recs = append([]entity.MemoryRecord{rec}, f.recs...)
	return id, nil
}

func (f *fakeStore) List(ctx context.Context, opts entity.SearchOptions) ([]entity.MemoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.MemoryRecord
	for _, r := range f.recs {
		if opts.UserID != "" && r.UserID != opts.UserID {
			continue
		}
		ok := true
		for k, v := range opts.Filters {
			if fmt.Sprint(r.Metadata[k]) != fmt.Sprint(v) {
				ok = false
			}
		}
		if ok {
			out = append(out, r)
		}
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) Search(ctx context.Context, query string, opts entity.SearchOptions) ([]entity.MemoryRecord, error) {
	recs, err := f.List(ctx, opts)
	for i := range recs {
		recs[i].Score = f.searchScore
	}
	return recs, err
}

func newService() (*Service, *fakeStore) {
	store := &fakeStore{}
	return New(store, "tester", logger.NewNop()), store
}

func TestSaveEliminatedIdea(t *testing.T) {
	svc, store := newService()
	long := strings.Repeat("r", 800)

	id, err := svc.SaveEliminatedIdea(context.Background(), EliminatedIdea{
		Topic:    "Pet cameras",
		Reason:   "Crowded market",
		Score:    3.5,
		Scores:   map[string]float64{"market_size": 4, "competition": 2},
		Research: long,
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", id)

	rec := store.recs[0]
	assert.Equal(t, "tester", rec.UserID)
	assert.Contains(t, rec.Memory, "Eliminated Startup Idea: Pet cameras")
	assert.Contains(t, rec.Memory, "Scores: competition=2.0, market_size=4.0")
	assert.Contains(t, rec.Memory, "Competitor Landscape: N/A")
	assert.NotContains(t, rec.Memory, strings.Repeat("r", 501))
	assert.Equal(t, entity.MemoryTypeEliminatedIdea, rec.MetaString("type"))
	assert.Equal(t, "eliminated", rec.MetaString("status"))
}

func TestCheckIfSimilarEliminated(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	_, _ = svc.SaveEliminatedIdea(ctx, EliminatedIdea{Topic: "Pet cameras"})

	store.searchScore = 0.9
	hit, ok, err := svc.CheckIfSimilarEliminated(ctx, "pet cams", 0.8)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pet cameras", hit.MetaString("topic"))

	store.searchScore = 0.5
	_, ok, err = svc.CheckIfSimilarEliminated(ctx, "pet cams", 0.8)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetAllIdeasByStatus(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	passed := entity.NewIdeaResult("A", entity.ModeDirect, 5)
	passed.SetVerdict(7, false)
	failed := entity.NewIdeaResult("B", entity.ModeDirect, 5)
	failed.SetVerdict(3, true)
	_, _ = svc.SaveEvaluation(ctx, passed)
	_, _ = svc.SaveEvaluation(ctx, failed)
	_, _ = svc.SaveEliminatedIdea(ctx, EliminatedIdea{Topic: "B"})
	_, _ = svc.SavePendingIdea(ctx, "C", "")

	all, err := svc.GetAllIdeas(ctx, "all", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	elim, err := svc.GetAllIdeas(ctx, "eliminated", 0)
	require.NoError(t, err)
	assert.Len(t, elim, 2)

	ok, err := svc.GetAllIdeas(ctx, "passed", 1)
	require.NoError(t, err)
	require.Len(t, ok, 1)
	assert.Equal(t, "A", ok[0].MetaString("topic"))

	pending, err := svc.GetPendingIdeas(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.SavePendingIdea(ctx, " ", "")
	assert.Error(t, err)
}

func TestSessionProtocol(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	require.NoError(t, svc.InitSession(ctx, "abcd1234", "Dentist scheduling", 5))
	done, err := svc.CheckPhaseComplete(ctx, "abcd1234", "researcher")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, svc.WritePhaseOutput(ctx, "abcd1234", "researcher", "research", map[string]string{
		"pain_points": "no-shows",
		"summary":     "real problem",
	}))
	done, err = svc.CheckPhaseComplete(ctx, "abcd1234", "researcher")
	require.NoError(t, err)
	assert.True(t, done)

	recs, err := svc.GetSessionContext(ctx, "abcd1234", "researcher")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, "ideation_researcher_abcd1234", store.recs[0].UserID)

	_, err = svc.GetScore(ctx, "abcd1234", "problem")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.WriteScore(ctx, "abcd1234", "problem", 6.5, "pass", map[string]any{"type": "ignored"}))
	score, err := svc.GetScore(ctx, "abcd1234", "problem")
	require.NoError(t, err)
	assert.Equal(t, 6.5, score)
	_, err = svc.GetScore(ctx, "abcd1234", "solution")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWaitForAgents(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = svc.WritePhaseOutput(ctx, "s1", "market-analyst", "market", nil)
	}()

	done, err := svc.WaitForAgents(ctx, "s1", []string{"market-analyst", "researcher"}, 150*time.Millisecond, 5*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, done["market-analyst"])
	assert.False(t, done["researcher"])

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	ok, err := svc.WaitForPhase(cctx, "s1", "researcher", time.Second, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestCache(t *testing.T) {
	store := &fakeStore{}
	c := NewCache(store, "global", time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "market", "pets")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "market", "pets", "payload"))
	val, ok, err := c.Get(ctx, "market", "pets")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", val)

	now = now.Add(2 * time.Hour)
	_, ok, err = c.Get(ctx, "market", "pets")
	require.NoError(t, err)
	assert.False(t, ok)
}
