package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/tableside/internal/cache"
	"github.com/Additional-Code/tableside/internal/entity"
)

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func newTestStore(now time.Time) (*Store, *memCache) {
	mem := newMemCache()
	return &Store{cache: mem, ttl: 2 * time.Hour, now: func() time.Time { return now }}, mem
}

func TestSaveAndLoad(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(now)
	ctx := context.Background()

	snap := Snapshot{
		SessionID:   "sess-1",
		OrderNumber: "#042",
		Status:      entity.StatusConfirmed,
		TableNumber: 4,
		Items: []entity.OrderItem{
			{MenuItemID: 1, Name: "Pad Thai", UnitPrice: 5000, Quantity: 2},
		},
		QueuePosition: 0,
		OrderedAt:     now.Add(-10 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestSaveRequiresSessionID(t *testing.T) {
	store, _ := newTestStore(time.Now())
	assert.Error(t, store.Save(context.Background(), Snapshot{OrderNumber: "#042"}))
}

func TestLoadMissing(t *testing.T) {
	store, _ := newTestStore(time.Now())
	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDiscardsExpired(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store, mem := newTestStore(now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Snapshot{
		SessionID:   "sess-1",
		OrderNumber: "#042",
		Status:      entity.StatusPending,
		OrderedAt:   now.Add(-3 * time.Hour),
	}))

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Zero(t, mem.len())
}

func TestLoadDiscardsCompleted(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store, mem := newTestStore(now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Snapshot{
		SessionID:   "sess-1",
		OrderNumber: "#042",
		Status:      entity.StatusCompleted,
		OrderedAt:   now.Add(-time.Minute),
	}))

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Zero(t, mem.len())
}

func TestLoadDropsCorruptSnapshot(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store, mem := newTestStore(now)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "order-session:sess-1", []byte("{not json"), 0))

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, mem.len())
}

func TestDelete(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store, mem := newTestStore(now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Snapshot{SessionID: "sess-1", OrderNumber: "#042", OrderedAt: now}))
	require.NoError(t, store.Delete(ctx, "sess-1"))
	assert.Zero(t, mem.len())
}
