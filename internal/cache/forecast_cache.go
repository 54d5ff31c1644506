package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/merchplan/internal/config"
	"github.com/andresuchdata/merchplan/internal/domain"
)

const (
	forecastRunKeyPrefix     = "forecast:run"
	forecastCompareKeyPrefix = "forecast:compare"
	forecastKeyPrefix        = "forecast:"
)

// ForecastKey identifies a forecast request by everything that determines its output.
type ForecastKey struct {
	SKUCode string
	Store   string
	Method  domain.ForecastMethod
	Config  domain.ForecastConfig
	History []domain.HistoricalPoint
}

type ForecastCache interface {
	GetRun(ctx context.Context, key ForecastKey) (*domain.ForecastRun, bool, error)
	SetRun(ctx context.Context, key ForecastKey, run *domain.ForecastRun) error
	GetComparison(ctx context.Context, key ForecastKey) (*domain.MethodComparison, bool, error)
	SetComparison(ctx context.Context, key ForecastKey, cmp *domain.MethodComparison) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisForecastCache(client, ttlFromSeconds(cfg.ForecastTTLSeconds)), nil
}

// NewRedisForecastCache wraps an existing client.
func NewRedisForecastCache(client *redis.Client, ttl time.Duration) ForecastCache {
	return &redisForecastCache{client: client, ttl: ttl}
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetRun(ctx context.Context, key ForecastKey) (*domain.ForecastRun, bool, error) {
	var run domain.ForecastRun
	ok, err := getJSON(ctx, c.client, buildForecastKey(forecastRunKeyPrefix, key), &run)
	if !ok || err != nil {
		return nil, false, err
	}
	return &run, true, nil
}

func (c *redisForecastCache) SetRun(ctx context.Context, key ForecastKey, run *domain.ForecastRun) error {
	return setJSON(ctx, c.client, buildForecastKey(forecastRunKeyPrefix, key), run, c.ttl)
}

func (c *redisForecastCache) GetComparison(ctx context.Context, key ForecastKey) (*domain.MethodComparison, bool, error) {
	var cmp domain.MethodComparison
	ok, err := getJSON(ctx, c.client, buildForecastKey(forecastCompareKeyPrefix, key), &cmp)
	if !ok || err != nil {
		return nil, false, err
	}
	return &cmp, true, nil
}

func (c *redisForecastCache) SetComparison(ctx context.Context, key ForecastKey, cmp *domain.MethodComparison) error {
	return setJSON(ctx, c.client, buildForecastKey(forecastCompareKeyPrefix, key), cmp, c.ttl)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, scanBatchSize)
}

func (n *noopForecastCache) GetRun(ctx context.Context, key ForecastKey) (*domain.ForecastRun, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetRun(ctx context.Context, key ForecastKey, run *domain.ForecastRun) error {
	return nil
}

func (n *noopForecastCache) GetComparison(ctx context.Context, key ForecastKey) (*domain.MethodComparison, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetComparison(ctx context.Context, key ForecastKey, cmp *domain.MethodComparison) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(prefix string, key ForecastKey) string {
	return fmt.Sprintf("%s:%s", prefix, forecastKeyHash(key))
}

func forecastKeyHash(key ForecastKey) string {
	cfg := key.Config
	parts := []string{
		"sku=" + strings.ToLower(strings.TrimSpace(key.SKUCode)),
		"store=" + strings.ToLower(strings.TrimSpace(key.Store)),
		"method=" + string(key.Method),
		fmt.Sprintf("weights=%g,%g,%g", cfg.Weights.MovingAvgWeight, cfg.Weights.ExpSmoothWeight, cfg.Weights.TrendWeight),
		fmt.Sprintf("smoothing=%g,%g", cfg.Alpha, cfg.Beta),
		fmt.Sprintf("horizon=%d,%d,%g", cfg.LookbackWeeks, cfg.ForecastWeeks, cfg.ConfidenceLevel),
	}

	// history is hashed in period order so callers may pass it unsorted
	history := append([]domain.HistoricalPoint(nil), key.History...)
	sort.SliceStable(history, func(i, j int) bool { return history[i].PeriodIndex < history[j].PeriodIndex })
	values := make([]string, len(history))
	for i, p := range history {
		values[i] = strconv.Itoa(p.PeriodIndex) + ":" + strconv.FormatFloat(p.Value, 'g', -1, 64)
	}
	parts = append(parts, "history="+strings.Join(values, ","))

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
