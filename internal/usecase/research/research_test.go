package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearch struct {
	mu      sync.Mutex
	queries []string
	fail    bool
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, query string, num int) (*entity.SearchResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	res := &entity.SearchResults{Query: query}
	if f.fail {
		res.Error = "HTTP error: 500"
		return res, nil
	}
	res.Organic = []entity.SearchHit{{Title: "t", Link: "https://x.example", Snippet: "s"}}
	return res, nil
}

type mapCache struct {
	data map[string]string
}

func (m *mapCache) Get(ctx context.Context, kind, query string) (string, bool, error) {
	v, ok := m.data[kind+":"+query]
	return v, ok, nil
}

func (m *mapCache) Set(ctx context.Context, kind, query, value string) error {
	m.data[kind+":"+query] = value
	return nil
}

func newService(search *fakeSearch, cache output.ResearchCache) *Service {
	s := New(search, cache, logger.NewNop(), 5)
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestQueries(t *testing.T) {
	s := newService(&fakeSearch{}, nil)
	q := s.Queries(KindMarket, "pet insurance")
	require.Len(t, q, 3)
	assert.Equal(t, "pet insurance market size 2025 2026", q[0])
	assert.Equal(t, []string{"raw query"}, s.Queries(KindGeneral, "raw query"))
}

func TestResearch_CachesSuccessfulBundles(t *testing.T) {
	search := &fakeSearch{}
	cache := &mapCache{data: map[string]string{}}
	s := newService(search, cache)

	b, err := s.Research(context.Background(), KindPainPoints, "freelancer invoicing")
	require.NoError(t, err)
	assert.Len(t, b.Results, 3)
	assert.False(t, b.CacheHit)

	again, err := s.Research(context.Background(), KindPainPoints, "freelancer invoicing")
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Len(t, search.queries, 3)
}

func TestResearch_DoesNotCacheFailures(t *testing.T) {
	search := &fakeSearch{fail: true}
	cache := &mapCache{data: map[string]string{}}
	s := newService(search, cache)

	b, err := s.Research(context.Background(), KindPricing, "crm")
	require.NoError(t, err)
	assert.Equal(t, "HTTP error: 500", b.Results[0].Error)
	assert.Empty(t, cache.data)
	assert.Contains(t, Format(b), "Error: HTTP error: 500")
}

func TestResearch_Errors(t *testing.T) {
	s := newService(&fakeSearch{err: context.Canceled}, nil)
	_, err := s.Research(context.Background(), KindGeneral, "x")
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = s.Research(context.Background(), KindGeneral, "  ")
	assert.Error(t, err)
}

func TestResearch_WithoutCache(t *testing.T) {
	search := &fakeSearch{}
	s := newService(search, nil)

	for i := 0; i < 2; i++ {
		b, err := s.Research(context.Background(), KindPricing, "crm")
		require.NoError(t, err)
		assert.False(t, b.CacheHit)
	}
	assert.Len(t, search.queries, 2*len(s.Queries(KindPricing, "crm")))
}

func TestParseKindAndFormat(t *testing.T) {
	k, ok := ParseKind("")
	assert.True(t, ok)
	assert.Equal(t, KindGeneral, k)
	_, ok = ParseKind("weather")
	assert.False(t, ok)

	out := Format(&Bundle{Kind: KindGeneral, Subject: "x", Results: []entity.SearchResults{
		{Query: "x", Answer: "42", Organic: []entity.SearchHit{{Title: "T", Link: "L", Snippet: "S"}}},
		{Query: "y"},
	}})
	assert.True(t, strings.Contains(out, "1. T (L)"))
	assert.Contains(t, out, "Answer: 42")
	assert.Contains(t, out, "No results.")
}
