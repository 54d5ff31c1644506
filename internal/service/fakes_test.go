package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andresuchdata/merchplan/internal/cache"
	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/storage"
)

type fakeHistoryRepo struct {
	points    []domain.HistoricalPoint
	err       error
	lastSKU   string
	lastStore string
	lastWeeks int
}

func (f *fakeHistoryRepo) GetWeeklySales(ctx context.Context, skuCode, store string, weeks int) ([]domain.HistoricalPoint, error) {
	f.lastSKU, f.lastStore, f.lastWeeks = skuCode, store, weeks
	return f.points, f.err
}

type fakeForecastRuns struct {
	mu    sync.Mutex
	saved map[string]*domain.ForecastRun
	saves int
	err   error
}

func newFakeForecastRuns() *fakeForecastRuns {
	return &fakeForecastRuns{saved: make(map[string]*domain.ForecastRun)}
}

func (f *fakeForecastRuns) SaveRun(ctx context.Context, run *domain.ForecastRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves++
	f.saved[run.ID] = run
	return nil
}

func (f *fakeForecastRuns) GetRun(ctx context.Context, id string) (*domain.ForecastRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.saved[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

// memoryForecastCache keys entries on the fields a test varies.
type memoryForecastCache struct {
	runs        map[string]*domain.ForecastRun
	comparisons map[string]*domain.MethodComparison
}

func newMemoryForecastCache() *memoryForecastCache {
	return &memoryForecastCache{
		runs:        make(map[string]*domain.ForecastRun),
		comparisons: make(map[string]*domain.MethodComparison),
	}
}

func memoryKey(key cache.ForecastKey) string {
	return fmt.Sprintf("%s|%s|%s|%v|%v", key.SKUCode, key.Store, key.Method, key.Config, key.History)
}

func (m *memoryForecastCache) GetRun(ctx context.Context, key cache.ForecastKey) (*domain.ForecastRun, bool, error) {
	run, ok := m.runs[memoryKey(key)]
	return run, ok, nil
}

func (m *memoryForecastCache) SetRun(ctx context.Context, key cache.ForecastKey, run *domain.ForecastRun) error {
	m.runs[memoryKey(key)] = run
	return nil
}

func (m *memoryForecastCache) GetComparison(ctx context.Context, key cache.ForecastKey) (*domain.MethodComparison, bool, error) {
	cmp, ok := m.comparisons[memoryKey(key)]
	return cmp, ok, nil
}

func (m *memoryForecastCache) SetComparison(ctx context.Context, key cache.ForecastKey, cmp *domain.MethodComparison) error {
	m.comparisons[memoryKey(key)] = cmp
	return nil
}

func (m *memoryForecastCache) InvalidateAll(ctx context.Context) error {
	m.runs = make(map[string]*domain.ForecastRun)
	m.comparisons = make(map[string]*domain.MethodComparison)
	return nil
}

type fakeSnapshotRepo struct {
	snapshots  []domain.SKUSnapshot
	lastFilter domain.SnapshotFilter
}

func (f *fakeSnapshotRepo) ListSnapshots(ctx context.Context, filter domain.SnapshotFilter) ([]domain.SKUSnapshot, error) {
	f.lastFilter = filter
	return f.snapshots, nil
}

type fakeClearanceRuns struct {
	saved map[string]*domain.ClearanceRun
	gets  int
}

func newFakeClearanceRuns() *fakeClearanceRuns {
	return &fakeClearanceRuns{saved: make(map[string]*domain.ClearanceRun)}
}

func (f *fakeClearanceRuns) SaveRun(ctx context.Context, run *domain.ClearanceRun) error {
	stored := *run
	// the repository does not keep summaries
	stored.Summary = domain.PortfolioSummary{}
	f.saved[run.ID] = &stored
	return nil
}

func (f *fakeClearanceRuns) GetRun(ctx context.Context, id string) (*domain.ClearanceRun, error) {
	f.gets++
	run, ok := f.saved[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *run
	return &copied, nil
}

type memoryClearanceCache struct {
	runs map[string]*domain.ClearanceRun
}

func newMemoryClearanceCache() *memoryClearanceCache {
	return &memoryClearanceCache{runs: make(map[string]*domain.ClearanceRun)}
}

func (m *memoryClearanceCache) GetRun(ctx context.Context, id string) (*domain.ClearanceRun, bool, error) {
	run, ok := m.runs[id]
	return run, ok, nil
}

func (m *memoryClearanceCache) SetRun(ctx context.Context, run *domain.ClearanceRun) error {
	m.runs[run.ID] = run
	return nil
}

func (m *memoryClearanceCache) InvalidateRun(ctx context.Context, id string) error {
	delete(m.runs, id)
	return nil
}

func (m *memoryClearanceCache) InvalidateAll(ctx context.Context) error {
	m.runs = make(map[string]*domain.ClearanceRun)
	return nil
}

type failingStorage struct{}

func (failingStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, errors.New("unavailable")
}

func (failingStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	return errors.New("unavailable")
}

func (failingStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	return errors.New("unavailable")
}

type fakeReplenishmentRepo struct {
	items     []domain.ReplenishmentItem
	lastStore string
}

func (f *fakeReplenishmentRepo) ListItems(ctx context.Context, store string) ([]domain.ReplenishmentItem, error) {
	f.lastStore = store
	return f.items, nil
}
