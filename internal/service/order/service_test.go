package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/cache"
	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	repo "github.com/Additional-Code/tableside/internal/repository/order"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

type mockStore struct {
	orders       []*entity.Order
	nextID       int64
	pendingAhead int
	updateErr    error
}

func (m *mockStore) Create(_ context.Context, order *entity.Order) error {
	m.nextID++
	order.ID = m.nextID
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockStore) GetByNumber(_ context.Context, number string) (*entity.Order, error) {
	var best *entity.Order
	for _, o := range m.orders {
		if o.Number != number {
			continue
		}
		if best == nil || o.CreatedAt.After(best.CreatedAt) {
			best = o
		}
	}
	if best == nil {
		return nil, repo.ErrNotFound
	}
	return best, nil
}

func (m *mockStore) ListByStatus(_ context.Context, status entity.Status) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockStore) ListActive(_ context.Context) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range m.orders {
		if o.Status != entity.StatusCompleted {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockStore) CountPendingBefore(context.Context, time.Time) (int, error) {
	return m.pendingAhead, nil
}

func (m *mockStore) UpdateStatus(_ context.Context, id int64, from, to entity.Status, now time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		if o.Status != from {
			return repo.ErrStatusMoved
		}
		o.Status = to
		o.UpdatedAt = now
		if to == entity.StatusCompleted {
			o.CompletedAt = &now
		}
		return nil
	}
	return repo.ErrStatusMoved
}

type mockMenu struct {
	items map[int64]entity.MenuItem
}

func (m *mockMenu) GetMenuItems(_ context.Context, ids []int64) (map[int64]entity.MenuItem, error) {
	out := make(map[int64]entity.MenuItem)
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, error)               { return nil, cache.ErrCacheMiss }
func (nopCache) Set(context.Context, string, []byte, time.Duration) error  { return nil }
func (nopCache) Delete(context.Context, string) error                      { return nil }

func newTestService(store *mockStore, menu *mockMenu) *Service {
	return &Service{
		repo:       store,
		catalog:    menu,
		cache:      nopCache{},
		cacheTTL:   time.Minute,
		logger:     zap.NewNop(),
		tableCount: 12,
		now:        func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) },
		randInt:    func(int) int { return 42 },
	}
}

func defaultMenu() *mockMenu {
	return &mockMenu{items: map[int64]entity.MenuItem{
		1: {ID: 1, Name: "Beef Noodle Soup", Price: 2500, Available: true},
		2: {ID: 2, Name: "Iced Tea", Price: 5000, Available: true},
		3: {ID: 3, Name: "Sold Out Special", Price: 9000, Available: false},
	}}
}

func TestCreateOrder(t *testing.T) {
	store := &mockStore{pendingAhead: 1}
	svc := newTestService(store, defaultMenu())

	result, err := svc.Create(context.Background(), dto.CreateOrderRequest{
		SessionID:     "sess-1",
		TableNumber:   4,
		PaymentMethod: "cash",
		Items: []dto.CreateOrderItemRequest{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "#042", result.Order.Number)
	assert.Equal(t, entity.StatusPending, result.Order.Status)
	assert.Equal(t, int64(10000), result.Order.Total)
	assert.Equal(t, 2, result.QueuePosition)
	require.Len(t, result.Order.Items, 2)
	assert.Equal(t, int64(2500), result.Order.Items[0].UnitPrice)

	require.Len(t, store.orders, 1)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService(&mockStore{}, defaultMenu())
	ctx := context.Background()
	items := []dto.CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}}

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateOrderRequest{TableNumber: 4, PaymentMethod: "cash"})
		assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
	})

	t.Run("table out of range", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateOrderRequest{TableNumber: 13, PaymentMethod: "cash", Items: items})
		assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())

		_, err = svc.Create(ctx, dto.CreateOrderRequest{TableNumber: 0, PaymentMethod: "cash", Items: items})
		assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
	})

	t.Run("missing payment method", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateOrderRequest{TableNumber: 4, Items: items})
		assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
	})

	t.Run("unknown menu item", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateOrderRequest{
			TableNumber:   4,
			PaymentMethod: "cash",
			Items:         []dto.CreateOrderItemRequest{{MenuItemID: 99, Quantity: 1}},
		})
		assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
	})

	t.Run("unavailable menu item", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateOrderRequest{
			TableNumber:   4,
			PaymentMethod: "cash",
			Items:         []dto.CreateOrderItemRequest{{MenuItemID: 3, Quantity: 1}},
		})
		assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
	})
}

func TestGetByNumber(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, defaultMenu())
	ctx := context.Background()

	_, err := svc.GetByNumber(ctx, "#042")
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())

	_, err = svc.Create(ctx, dto.CreateOrderRequest{
		TableNumber:   4,
		PaymentMethod: "cash",
		Items:         []dto.CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	order, err := svc.GetByNumber(ctx, "#042")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), order.Total)
}

func TestAdvance(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, defaultMenu())
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateOrderRequest{
		TableNumber:   4,
		PaymentMethod: "cash",
		Items:         []dto.CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("happy path", func(t *testing.T) {
		order, err := svc.Advance(ctx, "#042", entity.StatusPending, entity.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusConfirmed, order.Status)
	})

	t.Run("skipping a step is rejected", func(t *testing.T) {
		_, err := svc.Advance(ctx, "#042", entity.StatusConfirmed, entity.StatusCompleted)
		assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
	})

	t.Run("regression is rejected", func(t *testing.T) {
		_, err := svc.Advance(ctx, "#042", entity.StatusConfirmed, entity.StatusPending)
		assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
	})

	t.Run("lost compare-and-swap is a conflict", func(t *testing.T) {
		// Stored status is confirmed; a second console acting on a stale
		// pending view loses the write.
		_, err := svc.Advance(ctx, "#042", entity.StatusPending, entity.StatusConfirmed)
		assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
	})

	t.Run("terminal transition stamps completion", func(t *testing.T) {
		_, err := svc.Advance(ctx, "#042", entity.StatusConfirmed, entity.StatusReady)
		require.NoError(t, err)

		order, err := svc.CompleteByPickup(ctx, "#042")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, order.Status)
		require.NotNil(t, order.CompletedAt)
	})
}

func TestListByStatusRejectsUnknown(t *testing.T) {
	svc := newTestService(&mockStore{}, defaultMenu())
	_, err := svc.ListByStatus(context.Background(), entity.Status("cancelled"))
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestNumberFormat(t *testing.T) {
	svc := newTestService(&mockStore{}, defaultMenu())

	svc.randInt = func(int) int { return 7 }
	assert.Equal(t, "#007", svc.newNumber())

	svc.randInt = func(int) int { return 999 }
	assert.Equal(t, "#999", svc.newNumber())
}
