package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/cache"
	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/entity"
	"github.com/Additional-Code/tableside/internal/session"
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

type stubNotifier struct {
	mu         sync.Mutex
	readyCalls []string
	acked      []string
	stopped    []string
}

func (n *stubNotifier) OrderReady(_ context.Context, orderNumber string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.readyCalls = append(n.readyCalls, orderNumber)
}

func (n *stubNotifier) Acknowledge(orderNumber string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.acked = append(n.acked, orderNumber)
}

func (n *stubNotifier) Stop(orderNumber string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = append(n.stopped, orderNumber)
}

func (n *stubNotifier) readyCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.readyCalls)
}

func trackOrder(number string, table, pos int, placed time.Time) TrackedOrder {
	return TrackedOrder{Number: number, TableNumber: table, QueuePosition: pos, OrderedAt: placed}
}

func newTestEngine(t *testing.T) (*Engine, *stubNotifier, *memCache) {
	t.Helper()
	mem := newMemCache()
	cfg := config.Config{}
	cfg.Orders.SessionTTL = 2 * time.Hour
	store := session.NewStore(cfg, mem)
	notifier := &stubNotifier{}
	return NewEngine(notifier, store, zap.NewNop()), notifier, mem
}

func TestTrackAndApplyAdvancesStatus(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	s, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 1, placed))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, s.Status())

	engine.Apply(ctx, []OrderView{
		{ID: 1, Number: "#042", Status: entity.StatusConfirmed, CreatedAt: placed},
	})
	assert.Equal(t, entity.StatusConfirmed, s.Status())
	assert.Equal(t, 0, s.QueuePosition())
}

func TestApplyReadyNotifiesOnce(t *testing.T) {
	engine, notifier, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	_, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 1, placed))
	require.NoError(t, err)

	snapshot := []OrderView{
		{ID: 1, Number: "#042", Status: entity.StatusReady, CreatedAt: placed},
	}
	for i := 0; i < 5; i++ {
		engine.Apply(ctx, snapshot)
	}

	assert.Equal(t, 1, notifier.readyCount())
}

func TestApplyNeverRegressesStatus(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	s, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 1, placed))
	require.NoError(t, err)

	engine.Apply(ctx, []OrderView{
		{ID: 1, Number: "#042", Status: entity.StatusReady, CreatedAt: placed},
	})
	require.Equal(t, entity.StatusReady, s.Status())

	// A delayed snapshot carrying an older state must not move the view back.
	engine.Apply(ctx, []OrderView{
		{ID: 1, Number: "#042", Status: entity.StatusConfirmed, CreatedAt: placed},
	})
	assert.Equal(t, entity.StatusReady, s.Status())
}

func TestApplyMissLeavesStateUntouched(t *testing.T) {
	engine, notifier, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	s, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 3, placed))
	require.NoError(t, err)

	engine.Apply(ctx, nil)
	engine.Apply(ctx, []OrderView{
		{ID: 9, Number: "#777", Status: entity.StatusReady, CreatedAt: placed},
	})

	assert.Equal(t, entity.StatusPending, s.Status())
	assert.Equal(t, 3, s.QueuePosition())
	assert.Zero(t, notifier.readyCount())
}

func TestApplyRecomputesQueuePosition(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	s, err := engine.Track(ctx, "sess-2", trackOrder("#043", 5, 2, placed.Add(time.Minute)))
	require.NoError(t, err)

	orders := []OrderView{
		{ID: 1, Number: "#042", Status: entity.StatusPending, CreatedAt: placed},
		{ID: 2, Number: "#043", Status: entity.StatusPending, CreatedAt: placed.Add(time.Minute)},
	}
	engine.Apply(ctx, orders)
	assert.Equal(t, 2, s.QueuePosition())

	// The order ahead leaves pending; the tracked order moves to the front.
	orders[0].Status = entity.StatusConfirmed
	engine.Apply(ctx, orders)
	assert.Equal(t, 1, s.QueuePosition())
}

func TestAcknowledgePickup(t *testing.T) {
	engine, notifier, mem := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	_, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 1, placed))
	require.NoError(t, err)
	require.Equal(t, 1, mem.len())

	require.NoError(t, engine.AcknowledgePickup(ctx, "sess-1"))
	assert.Equal(t, []string{"#042"}, notifier.acked)
	assert.Zero(t, mem.len())

	_, err = engine.Resume(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	assert.ErrorIs(t, engine.AcknowledgePickup(ctx, "sess-1"), ErrNoActiveOrder)
}

func TestApplyCompletedClosesSession(t *testing.T) {
	engine, notifier, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	s, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 1, placed))
	require.NoError(t, err)

	engine.Apply(ctx, []OrderView{
		{ID: 1, Number: "#042", Status: entity.StatusCompleted, CreatedAt: placed},
	})

	assert.True(t, s.Closed())
	assert.Equal(t, []string{"#042"}, notifier.stopped)
}

func TestResumeFromStore(t *testing.T) {
	engine, _, mem := newTestEngine(t)
	ctx := context.Background()
	placed := time.Now().UTC().Add(-10 * time.Minute)

	_, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 2, placed))
	require.NoError(t, err)

	// Simulate a restart: a fresh engine over the same backing cache.
	cfg := config.Config{}
	cfg.Orders.SessionTTL = 2 * time.Hour
	fresh := NewEngine(&stubNotifier{}, session.NewStore(cfg, mem), zap.NewNop())

	s, err := fresh.Resume(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "#042", s.OrderNumber)
	assert.Equal(t, entity.StatusPending, s.Status())
	assert.Equal(t, 2, s.QueuePosition())
}

func TestResumeRestoresItems(t *testing.T) {
	engine, _, mem := newTestEngine(t)
	ctx := context.Background()
	placed := time.Now().UTC().Add(-10 * time.Minute)

	items := []entity.OrderItem{
		{MenuItemID: 1, Name: "Pad Thai", UnitPrice: 5000, Quantity: 2},
		{MenuItemID: 3, Name: "Iced Tea", UnitPrice: 2500, Quantity: 1},
	}
	order := trackOrder("#042", 4, 2, placed)
	order.Items = items
	_, err := engine.Track(ctx, "sess-1", order)
	require.NoError(t, err)

	// Simulate a restart: the cart must come back from the snapshot alone.
	cfg := config.Config{}
	cfg.Orders.SessionTTL = 2 * time.Hour
	fresh := NewEngine(&stubNotifier{}, session.NewStore(cfg, mem), zap.NewNop())

	s, err := fresh.Resume(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, items, s.Items)
}

func TestStaleSnapshotDoesNotReviveQueuePosition(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	s, err := engine.Track(ctx, "sess-1", trackOrder("#043", 5, 2, placed.Add(time.Minute)))
	require.NoError(t, err)

	engine.Apply(ctx, []OrderView{
		{ID: 2, Number: "#043", Status: entity.StatusConfirmed, CreatedAt: placed.Add(time.Minute)},
	})
	require.Equal(t, entity.StatusConfirmed, s.Status())
	require.Equal(t, 0, s.QueuePosition())

	// An out-of-order delivery still reporting pending, with another pending
	// order ahead, must not put a queue number next to a confirmed display.
	engine.Apply(ctx, []OrderView{
		{ID: 1, Number: "#042", Status: entity.StatusPending, CreatedAt: placed},
		{ID: 2, Number: "#043", Status: entity.StatusPending, CreatedAt: placed.Add(time.Minute)},
	})
	assert.Equal(t, entity.StatusConfirmed, s.Status())
	assert.Equal(t, 0, s.QueuePosition())
}

func TestTrackReplacesPreviousOrder(t *testing.T) {
	engine, notifier, _ := newTestEngine(t)
	ctx := context.Background()
	placed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	_, err := engine.Track(ctx, "sess-1", trackOrder("#042", 4, 1, placed))
	require.NoError(t, err)
	s2, err := engine.Track(ctx, "sess-1", trackOrder("#043", 4, 1, placed.Add(time.Minute)))
	require.NoError(t, err)

	assert.Equal(t, []string{"#042"}, notifier.stopped)

	engine.Apply(ctx, []OrderView{
		{ID: 2, Number: "#043", Status: entity.StatusConfirmed, CreatedAt: placed.Add(time.Minute)},
	})
	assert.Equal(t, entity.StatusConfirmed, s2.Status())
}

func TestSweepStale(t *testing.T) {
	engine, notifier, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Track(ctx, "old", trackOrder("#042", 4, 1, time.Now().Add(-3*time.Hour)))
	require.NoError(t, err)
	_, err = engine.Track(ctx, "fresh", trackOrder("#043", 5, 1, time.Now()))
	require.NoError(t, err)

	released := engine.SweepStale(2 * time.Hour)
	assert.Equal(t, 1, released)
	assert.Equal(t, []string{"#042"}, notifier.stopped)

	_, err = engine.Resume(ctx, "fresh")
	assert.NoError(t, err)
}
