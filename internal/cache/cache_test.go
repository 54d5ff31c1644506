package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchplan/internal/config"
	"github.com/andresuchdata/merchplan/internal/domain"
)

func sampleKey() ForecastKey {
	return ForecastKey{
		SKUCode: "JKT-001",
		Method:  domain.MethodEnsemble,
		Config:  domain.DefaultForecastConfig(),
		History: []domain.HistoricalPoint{{PeriodIndex: 1, Value: 10}, {PeriodIndex: 2, Value: 20}},
	}
}

func TestForecastKeyHash_Stable(t *testing.T) {
	a := sampleKey()
	b := sampleKey()
	b.SKUCode = "  jkt-001 "
	b.History = []domain.HistoricalPoint{{PeriodIndex: 2, Value: 20}, {PeriodIndex: 1, Value: 10}}
	assert.Equal(t, forecastKeyHash(a), forecastKeyHash(b))

	c := sampleKey()
	c.Config.Alpha = 0.5
	assert.NotEqual(t, forecastKeyHash(a), forecastKeyHash(c))

	d := sampleKey()
	d.History[1].Value = 21
	assert.NotEqual(t, forecastKeyHash(a), forecastKeyHash(d))
}

func TestRedisForecastCache_RunRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ttl := 5 * time.Minute
	c := NewRedisForecastCache(client, ttl)
	ctx := context.Background()

	key := buildForecastKey(forecastRunKeyPrefix, sampleKey())
	run := &domain.ForecastRun{ID: "run-1", Method: domain.MethodEnsemble, Points: []domain.ForecastPoint{{PeriodIndex: 3, PointForecast: 30}}}
	payload, err := json.Marshal(run)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, ttl).SetVal("OK")
	mock.ExpectGet(key).SetVal(string(payload))

	_, ok, err := c.GetRun(ctx, sampleKey())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetRun(ctx, sampleKey(), run))

	got, ok, err := c.GetRun(ctx, sampleKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, 30.0, got.Points[0].PointForecast)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisForecastCache_ComparisonErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisForecastCache(client, time.Minute)

	key := buildForecastKey(forecastCompareKeyPrefix, sampleKey())
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectGet(key).SetVal("{not json")

	_, ok, err := c.GetComparison(context.Background(), sampleKey())
	assert.Error(t, err)
	assert.False(t, ok)

	_, ok, err = c.GetComparison(context.Background(), sampleKey())
	assert.Error(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisForecastCache_InvalidateAll(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisForecastCache(client, time.Minute)

	mock.ExpectScan(0, "forecast:*", scanBatchSize).SetVal([]string{"forecast:run:a", "forecast:compare:b"}, 7)
	mock.ExpectDel("forecast:run:a", "forecast:compare:b").SetVal(2)
	mock.ExpectScan(7, "forecast:*", scanBatchSize).SetVal(nil, 0)

	require.NoError(t, c.InvalidateAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClearanceCache(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ttl := 2 * time.Minute
	c := NewRedisClearanceCache(client, ttl)
	ctx := context.Background()

	run := &domain.ClearanceRun{
		ID: "run-9",
		Summary: domain.PortfolioSummary{
			TotalSKUs: 1,
			ByUrgency: map[domain.UrgencyLevel]int{domain.UrgencyCritical: 1},
		},
	}
	payload, err := json.Marshal(run)
	require.NoError(t, err)

	mock.ExpectSet("clearance:run:run-9", payload, ttl).SetVal("OK")
	mock.ExpectGet("clearance:run:run-9").SetVal(string(payload))
	mock.ExpectDel("clearance:run:run-9").SetVal(1)

	require.NoError(t, c.SetRun(ctx, run))

	got, ok, err := c.GetRun(ctx, "run-9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Summary.ByUrgency[domain.UrgencyCritical])

	require.NoError(t, c.InvalidateRun(ctx, "run-9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisabledCachesAreNoop(t *testing.T) {
	fc, err := NewForecastCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	_, ok, err := fc.GetRun(context.Background(), sampleKey())
	assert.NoError(t, err)
	assert.False(t, ok)

	cc, err := NewClearanceCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, cc.SetRun(context.Background(), &domain.ClearanceRun{ID: "x"}))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/1"})
	require.NoError(t, err)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 1, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}
