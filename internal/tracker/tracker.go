package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/entity"
	"github.com/Additional-Code/tableside/internal/notify"
	"github.com/Additional-Code/tableside/internal/session"
)

// Notifier receives ready transitions from the engine. Implemented by the
// notify.Dispatcher.
type Notifier interface {
	OrderReady(ctx context.Context, orderNumber string, tableNumber int)
	Acknowledge(orderNumber string)
	Stop(orderNumber string)
}

// ErrNoActiveOrder is returned for sessions with nothing to track.
var ErrNoActiveOrder = errors.New("no active order for session")

// Session is one customer's live view of their order: displayed status,
// queue position and pickup state. A session only moves forward through the
// order lifecycle; a delayed out-of-order snapshot can never regress what
// the customer sees.
type Session struct {
	SessionID   string
	OrderNumber string
	TableNumber int
	Items       []entity.OrderItem
	OrderedAt   time.Time

	mu       sync.Mutex
	status   entity.Status
	queuePos int
	pickedUp bool
	closed   bool
}

// Status returns the currently displayed status.
func (s *Session) Status() entity.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// QueuePosition returns the current 1-based pending rank, 0 when the order
// is past pending.
func (s *Session) QueuePosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queuePos
}

// Closed reports whether tracking has ended for this session.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Snapshot{
		SessionID:     s.SessionID,
		OrderNumber:   s.OrderNumber,
		Status:        s.status,
		TableNumber:   s.TableNumber,
		Items:         s.Items,
		QueuePosition: s.queuePos,
		PickedUp:      s.pickedUp,
		OrderedAt:     s.OrderedAt,
	}
}

// Engine reconciles every active customer session against snapshots of the
// orders collection. It is the authoritative bridge between the staff status
// pipeline and what customers see.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	notifier Notifier
	store    *session.Store
	logger   *zap.Logger
}

// NewEngine builds a tracking engine.
func NewEngine(notifier Notifier, store *session.Store, logger *zap.Logger) *Engine {
	return &Engine{
		sessions: make(map[string]*Session),
		notifier: notifier,
		store:    store,
		logger:   logger,
	}
}

// Module wires the engine and releases every session on shutdown.
var Module = fx.Options(
	fx.Provide(func(d *notify.Dispatcher, store *session.Store, logger *zap.Logger) *Engine {
		return NewEngine(d, store, logger)
	}),
	fx.Invoke(func(lc fx.Lifecycle, e *Engine) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				e.CloseAll()
				return nil
			},
		})
	}),
)

// TrackedOrder describes the freshly placed order a session follows. Items
// ride along in the snapshot so a reload can redraw the cart without
// re-fetching by a number that is not unique.
type TrackedOrder struct {
	Number        string
	TableNumber   int
	Items         []entity.OrderItem
	QueuePosition int
	OrderedAt     time.Time
}

// Track starts following an order for a customer session. One active order
// per session: tracking a new order replaces the previous subscription.
func (e *Engine) Track(ctx context.Context, sessionID string, order TrackedOrder) (*Session, error) {
	if sessionID == "" || order.Number == "" {
		return nil, errors.New("session id and order number are required")
	}

	s := &Session{
		SessionID:   sessionID,
		OrderNumber: order.Number,
		TableNumber: order.TableNumber,
		Items:       order.Items,
		OrderedAt:   order.OrderedAt,
		status:      entity.StatusPending,
		queuePos:    order.QueuePosition,
	}

	e.mu.Lock()
	if prev, ok := e.sessions[sessionID]; ok {
		e.release(prev)
	}
	e.sessions[sessionID] = s
	e.mu.Unlock()

	if err := e.store.Save(ctx, s.snapshot()); err != nil {
		e.logger.Warn("order session save failed", zap.String("session", sessionID), zap.Error(err))
	}
	return s, nil
}

// Resume restores tracking from a persisted snapshot after a reconnect.
// Expired and completed snapshots are discarded by the store.
func (e *Engine) Resume(ctx context.Context, sessionID string) (*Session, error) {
	e.mu.RLock()
	if s, ok := e.sessions[sessionID]; ok && !s.Closed() {
		e.mu.RUnlock()
		return s, nil
	}
	e.mu.RUnlock()

	snap, err := e.store.Load(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, err
	}

	s := &Session{
		SessionID:   snap.SessionID,
		OrderNumber: snap.OrderNumber,
		TableNumber: snap.TableNumber,
		Items:       snap.Items,
		OrderedAt:   snap.OrderedAt,
		status:      snap.Status,
		queuePos:    snap.QueuePosition,
	}
	s.pickedUp = snap.PickedUp

	e.mu.Lock()
	e.sessions[sessionID] = s
	e.mu.Unlock()
	return s, nil
}

// Apply reconciles every active session against a fresh snapshot of the
// orders collection. Missing matches are logged and leave the displayed
// state untouched: a transient write lag must not flicker the customer view.
func (e *Engine) Apply(ctx context.Context, orders []OrderView) {
	e.mu.RLock()
	active := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		active = append(active, s)
	}
	e.mu.RUnlock()

	for _, s := range active {
		e.reconcile(ctx, s, orders)
	}
}

// reconcile applies one snapshot delivery to one session. The last-status
// check under the session mutex makes overlapping deliveries safe: the
// ready notification fires on the transition, never per snapshot.
func (e *Engine) reconcile(ctx context.Context, s *Session, orders []OrderView) {
	matched, ok := Match(s.OrderNumber, orders)
	if !ok {
		e.logger.Debug("tracked order not in snapshot",
			zap.String("session", s.SessionID),
			zap.String("order", s.OrderNumber),
		)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	becameReady := false
	changed := false

	if matched.Status != s.status && s.status.Before(matched.Status) {
		becameReady = matched.Status == entity.StatusReady
		s.status = matched.Status
		changed = true
	}

	// Queue position only means something while the displayed status is
	// still pending; a stale snapshot must not revive it afterwards.
	newPos := 0
	if s.status == entity.StatusPending {
		newPos = QueuePosition(s.OrderNumber, matched, orders)
	}
	if newPos != s.queuePos {
		s.queuePos = newPos
		changed = true
	}

	completed := s.status == entity.StatusCompleted
	s.mu.Unlock()

	if becameReady {
		e.notifier.OrderReady(ctx, s.OrderNumber, s.TableNumber)
	}

	if changed {
		if err := e.store.Save(ctx, s.snapshot()); err != nil {
			e.logger.Warn("order session save failed", zap.String("session", s.SessionID), zap.Error(err))
		}
	}

	if completed {
		e.Close(s.SessionID)
	}
}

// AcknowledgePickup records the customer's explicit pickup confirmation:
// the ready re-alert stops and the session ends.
func (e *Engine) AcknowledgePickup(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	if !ok {
		e.mu.Unlock()
		return ErrNoActiveOrder
	}
	delete(e.sessions, sessionID)
	e.mu.Unlock()

	s.mu.Lock()
	s.pickedUp = true
	s.status = entity.StatusCompleted
	s.closed = true
	number := s.OrderNumber
	s.mu.Unlock()

	e.notifier.Acknowledge(number)
	if err := e.store.Delete(ctx, sessionID); err != nil {
		e.logger.Warn("order session delete failed", zap.String("session", sessionID), zap.Error(err))
	}
	return nil
}

// Close releases a session: the subscription ends and any armed re-alert is
// cancelled. Idempotent.
func (e *Engine) Close(sessionID string) {
	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	if ok {
		delete(e.sessions, sessionID)
	}
	e.mu.Unlock()
	if ok {
		e.release(s)
	}
}

// CloseAll releases every session; used on shutdown.
func (e *Engine) CloseAll() {
	e.mu.Lock()
	all := e.sessions
	e.sessions = make(map[string]*Session)
	e.mu.Unlock()
	for _, s := range all {
		e.release(s)
	}
}

// SweepStale closes sessions whose orders were placed longer ago than the
// given TTL. Run periodically by the scheduler.
func (e *Engine) SweepStale(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	e.mu.Lock()
	var stale []*Session
	for id, s := range e.sessions {
		if s.OrderedAt.Before(cutoff) {
			stale = append(stale, s)
			delete(e.sessions, id)
		}
	}
	e.mu.Unlock()

	for _, s := range stale {
		e.release(s)
	}
	return len(stale)
}

func (e *Engine) release(s *Session) {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	number := s.OrderNumber
	s.mu.Unlock()
	if !alreadyClosed {
		e.notifier.Stop(number)
	}
}
