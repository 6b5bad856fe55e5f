package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/cache"
	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	"github.com/Additional-Code/tableside/internal/messaging"
	catalogrepo "github.com/Additional-Code/tableside/internal/repository/catalog"
	repo "github.com/Additional-Code/tableside/internal/repository/order"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tableside/service/order")

// Store is the slice of the order repository the service needs.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByNumber(ctx context.Context, number string) (*entity.Order, error)
	ListByStatus(ctx context.Context, status entity.Status) ([]entity.Order, error)
	ListActive(ctx context.Context) ([]entity.Order, error)
	CountPendingBefore(ctx context.Context, createdAt time.Time) (int, error)
	UpdateStatus(ctx context.Context, id int64, from, to entity.Status, now time.Time) error
}

// MenuStore resolves cart lines against the menu.
type MenuStore interface {
	GetMenuItems(ctx context.Context, ids []int64) (map[int64]entity.MenuItem, error)
}

// Service encapsulates business logic around orders: checkout, the staff
// status pipeline and lookups.
type Service struct {
	repo       Store
	catalog    MenuStore
	cache      cache.Store
	cacheTTL   time.Duration
	logger     *zap.Logger
	publisher  messaging.Client
	tableCount int
	messaging  messagingConfig
	now        func() time.Time
	randInt    func(n int) int
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Catalog    *catalogrepo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:       p.Repository,
		catalog:    p.Catalog,
		cache:      p.Cache,
		cacheTTL:   p.Config.Cache.DefaultTTL,
		logger:     p.Logger,
		publisher:  p.Publisher,
		tableCount: p.Config.Orders.TableCount,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.StatusTopic,
		},
		now:     func() time.Time { return time.Now().UTC() },
		randInt: rand.Intn,
	}
}

// CreateResult is what checkout hands back to the customer view.
type CreateResult struct {
	Order         *entity.Order
	QueuePosition int
}

// Create builds and persists an order from the cart. The order number is a
// random zero-padded three digit "#NNN"; uniqueness is deliberately not
// guaranteed, downstream lookup tolerates collisions. Total is computed here
// from current menu prices and never recomputed again, so later price edits
// do not touch placed orders. On persistence failure nothing is cached or
// published and the caller keeps its cart.
func (s *Service) Create(ctx context.Context, req dto.CreateOrderRequest) (*CreateResult, error) {
	if len(req.Items) == 0 {
		return nil, errorbank.BadRequest("cart is empty")
	}
	if req.TableNumber < 1 || req.TableNumber > s.tableCount {
		return nil, errorbank.BadRequest(fmt.Sprintf("table number must be between 1 and %d", s.tableCount))
	}
	if req.PaymentMethod == "" {
		return nil, errorbank.BadRequest("payment method is required")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int("order.table", req.TableNumber)))
	defer span.End()

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.MenuItemID)
	}
	menu, err := s.catalog.GetMenuItems(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "menu lookup failed")
		return nil, errorbank.Internal("failed to load menu items", errorbank.WithCause(err))
	}

	now := s.now()
	order := &entity.Order{
		Number:        s.newNumber(),
		TableNumber:   req.TableNumber,
		Status:        entity.StatusPending,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, it := range req.Items {
		mi, ok := menu[it.MenuItemID]
		if !ok {
			return nil, errorbank.Unprocessable("unknown menu item", errorbank.WithDetail("menu_item_id", it.MenuItemID))
		}
		if !mi.Available {
			return nil, errorbank.Unprocessable("menu item unavailable", errorbank.WithDetail("menu_item_id", it.MenuItemID))
		}
		order.Items = append(order.Items, entity.OrderItem{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			UnitPrice:  mi.Price,
			Quantity:   it.Quantity,
		})
	}
	order.Total = order.ItemTotal()

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	// One-shot initial queue position; the tracker keeps it fresh afterwards.
	ahead, err := s.repo.CountPendingBefore(ctx, order.CreatedAt)
	if err != nil {
		s.logger.Warn("initial queue count failed", zap.String("order", order.Number), zap.Error(err))
		ahead = 0
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
	}

	s.publishStatus(ctx, order, "", order.Status)

	return &CreateResult{Order: order, QueuePosition: ahead + 1}, nil
}

// GetByNumber retrieves the newest order carrying the customer-facing
// number, consulting cache when available.
func (s *Service) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.GetByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	if order, err := s.getFromCache(ctx, number); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("number", number), zap.Error(err))
	}

	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("number", number), zap.Error(err))
	}

	return order, nil
}

// ListByStatus returns orders in one pipeline state for the staff console.
func (s *Service) ListByStatus(ctx context.Context, status entity.Status) ([]entity.Order, error) {
	if !status.Valid() {
		return nil, errorbank.BadRequest("unknown status", errorbank.WithDetail("status", string(status)))
	}
	return s.repo.ListByStatus(ctx, status)
}

// ListActive returns every non-completed order, oldest first.
func (s *Service) ListActive(ctx context.Context) ([]entity.Order, error) {
	return s.repo.ListActive(ctx)
}

// Advance moves an order one step through the pipeline with a conditional
// write. The state machine rejects anything but the single legal forward
// step; a lost compare-and-swap surfaces as a conflict so a racing staff
// member sees the collision instead of silently double-advancing.
func (s *Service) Advance(ctx context.Context, number string, from, to entity.Status) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Advance", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.status.from", string(from)),
		attribute.String("order.status.to", string(to)),
	))
	defer span.End()

	if !from.CanTransition(to) {
		return nil, errorbank.Unprocessable("illegal status transition",
			errorbank.WithDetail("from", string(from)),
			errorbank.WithDetail("to", string(to)),
		)
	}

	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, order.ID, from, to, now); err != nil {
		if errors.Is(err, repo.ErrStatusMoved) {
			return nil, errorbank.Conflict("order status changed concurrently")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update status", errorbank.WithCause(err))
	}

	order.Status = to
	order.UpdatedAt = now
	if to == entity.StatusCompleted {
		order.CompletedAt = &now
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
	}

	s.publishStatus(ctx, order, from, to)
	return order, nil
}

// CompleteByPickup is the customer closing the loop: acknowledge pickup of
// a ready order, writing the same terminal transition staff would.
func (s *Service) CompleteByPickup(ctx context.Context, number string) (*entity.Order, error) {
	return s.Advance(ctx, number, entity.StatusReady, entity.StatusCompleted)
}

// newNumber picks a random customer-facing order number "#NNN".
func (s *Service) newNumber() string {
	return fmt.Sprintf("#%03d", s.randInt(1000))
}

// StatusEvent is emitted on every order status change, including creation.
type StatusEvent struct {
	OrderID     int64         `json:"order_id"`
	Number      string        `json:"number"`
	TableNumber int           `json:"table_number"`
	From        entity.Status `json:"from,omitempty"`
	To          entity.Status `json:"to"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

func (s *Service) publishStatus(ctx context.Context, order *entity.Order, from, to entity.Status) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := StatusEvent{
		OrderID:     order.ID,
		Number:      order.Number,
		TableNumber: order.TableNumber,
		From:        from,
		To:          to,
		OccurredAt:  s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal status event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		s.logger.Error("publish status event", zap.Error(err))
	}
}

func (s *Service) cacheKey(number string) string {
	return fmt.Sprintf("orders:%s", number)
}

func (s *Service) getFromCache(ctx context.Context, number string) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(number))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.Number), bytes, s.cacheTTL)
}
