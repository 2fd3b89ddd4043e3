package memory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var _ output.ResearchCache = (*Cache)(nil)

// Cache keeps research payloads as memory records with a cached_at stamp.
type Cache struct {
	store  output.MemoryPort
	userID string
	ttl    time.Duration
	now    func() time.Time
}

func NewCache(store output.MemoryPort, scope string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{store: store, userID: SessionUserID("cache", scope), ttl: ttl, now: time.Now}
}

func cacheKey(kind, query string) string {
	sum := md5.Sum([]byte(kind + ":" + query))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, kind, query string) (string, bool, error) {
	recs, err := c.store.List(ctx, entity.SearchOptions{
		UserID: c.userID,
		Limit:  1,
		Filters: map[string]any{
			"type":      entity.MemoryTypeResearchCache,
			"cache_key": cacheKey(kind, query),
		},
	})
	if err != nil || len(recs) == 0 {
		return "", false, err
	}
	rec := recs[0]
	if c.expired(rec) {
		return "", false, nil
	}
	return rec.MetaString("results"), true, nil
}

func (c *Cache) Set(ctx context.Context, kind, query, value string) error {
	q := query
	if len(q) > 100 {
		q = q[:100]
	}
	_, err := c.store.Add(ctx, entity.MemoryInput{
		Text:   "Cached " + kind + ": " + q,
		UserID: c.userID,
		Metadata: map[string]any{
			"type":          entity.MemoryTypeResearchCache,
			"cache_key":     cacheKey(kind, query),
			"research_type": kind,
			"query":         query,
			"results":       value,
			"cached_at":     c.now().Format(time.RFC3339Nano),
			"ttl_hours":     c.ttl.Hours(),
		},
	})
	return err
}

func (c *Cache) expired(rec entity.MemoryRecord) bool {
	at, err := time.Parse(time.RFC3339Nano, rec.MetaString("cached_at"))
	if err != nil {
		return true
	}
	ttl := c.ttl
	if h, ok := rec.MetaFloat("ttl_hours"); ok {
		ttl = time.Duration(h * float64(time.Hour))
	}
	return c.now().Sub(at) > ttl
}
