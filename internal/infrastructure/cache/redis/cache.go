// Package redis stores research payloads in Redis with a TTL.
package redis

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"ideation-orchestrator/internal/application/port/output"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "ideation:research:"

var _ output.ResearchCache = (*Cache)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Cache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// New connects and pings the server.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.TTL), nil
}

func NewWithClient(client goredis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

// Key hashes kind and query the same way the memory-backed cache does.
func Key(kind, query string) string {
	sum := md5.Sum([]byte(kind + ":" + query))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, kind, query string) (string, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+Key(kind, query)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, kind, query, value string) error {
	if err := c.client.Set(ctx, keyPrefix+Key(kind, query), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
