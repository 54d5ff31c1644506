package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/merchplan/internal/config"
	"github.com/andresuchdata/merchplan/internal/domain"
)

const clearanceRunKeyPrefix = "clearance:run"

// ClearanceCache keeps recently produced clearance runs, summary included, keyed by run id.
type ClearanceCache interface {
	GetRun(ctx context.Context, id string) (*domain.ClearanceRun, bool, error)
	SetRun(ctx context.Context, run *domain.ClearanceRun) error
	InvalidateRun(ctx context.Context, id string) error
	InvalidateAll(ctx context.Context) error
}

type redisClearanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopClearanceCache struct{}

func NewClearanceCache(cfg config.CacheConfig) (ClearanceCache, error) {
	if !cfg.Enabled {
		return &noopClearanceCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisClearanceCache(client, ttlFromSeconds(cfg.ClearanceTTLSeconds)), nil
}

// NewRedisClearanceCache wraps an existing client.
func NewRedisClearanceCache(client *redis.Client, ttl time.Duration) ClearanceCache {
	return &redisClearanceCache{client: client, ttl: ttl}
}

func NewNoopClearanceCache() ClearanceCache {
	return &noopClearanceCache{}
}

func (c *redisClearanceCache) GetRun(ctx context.Context, id string) (*domain.ClearanceRun, bool, error) {
	var run domain.ClearanceRun
	ok, err := getJSON(ctx, c.client, clearanceRunKey(id), &run)
	if !ok || err != nil {
		return nil, false, err
	}
	return &run, true, nil
}

func (c *redisClearanceCache) SetRun(ctx context.Context, run *domain.ClearanceRun) error {
	return setJSON(ctx, c.client, clearanceRunKey(run.ID), run, c.ttl)
}

func (c *redisClearanceCache) InvalidateRun(ctx context.Context, id string) error {
	return c.client.Del(ctx, clearanceRunKey(id)).Err()
}

func (c *redisClearanceCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, clearanceRunKeyPrefix, scanBatchSize)
}

func (n *noopClearanceCache) GetRun(ctx context.Context, id string) (*domain.ClearanceRun, bool, error) {
	return nil, false, nil
}

func (n *noopClearanceCache) SetRun(ctx context.Context, run *domain.ClearanceRun) error {
	return nil
}

func (n *noopClearanceCache) InvalidateRun(ctx context.Context, id string) error {
	return nil
}

func (n *noopClearanceCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func clearanceRunKey(id string) string {
	return fmt.Sprintf("%s:%s", clearanceRunKeyPrefix, id)
}
