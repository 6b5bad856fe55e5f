package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/Additional-Code/tableside/internal/cache"
	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/entity"
)

// Snapshot is the customer device's view of its active order, persisted so a
// reconnect can resume tracking where it left off.
type Snapshot struct {
	SessionID     string             `json:"session_id"`
	OrderNumber   string             `json:"order_number"`
	Status        entity.Status      `json:"status"`
	TableNumber   int                `json:"table_number"`
	Items         []entity.OrderItem `json:"items"`
	QueuePosition int                `json:"queue_position"`
	PickedUp      bool               `json:"picked_up"`
	OrderedAt     time.Time          `json:"ordered_at"`
}

// ErrNotFound is returned when no snapshot exists for the session.
var ErrNotFound = errors.New("order session not found")

// ErrExpired is returned when a snapshot exists but can no longer be
// resumed: the order completed or the snapshot outlived the session TTL.
var ErrExpired = errors.New("order session expired")

// Store persists order session snapshots in the cache.
type Store struct {
	cache cache.Store
	ttl   time.Duration
	now   func() time.Time
}

// Module provides the session store to Fx.
var Module = fx.Provide(NewStore)

// NewStore builds a Store honoring the configured session TTL.
func NewStore(cfg config.Config, c cache.Store) *Store {
	return &Store{cache: c, ttl: cfg.Orders.SessionTTL, now: time.Now}
}

func (s *Store) key(sessionID string) string {
	return fmt.Sprintf("order-session:%s", sessionID)
}

// Save writes the snapshot. The cache entry carries the session TTL so an
// abandoned session ages out on its own.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if snap.SessionID == "" {
		return errors.New("session id is required")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.key(snap.SessionID), payload, s.ttl)
}

// Load returns the resumable snapshot for the session. Completed orders and
// snapshots older than the session TTL are discarded on load: the entry is
// deleted and ErrExpired returned, matching the rule that stale local state
// must not revive a dead order view.
func (s *Store) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	payload, err := s.cache.Get(ctx, s.key(sessionID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		// Unreadable snapshots are dropped rather than surfaced.
		_ = s.cache.Delete(ctx, s.key(sessionID))
		return Snapshot{}, ErrNotFound
	}

	if snap.Status == entity.StatusCompleted || s.now().Sub(snap.OrderedAt) > s.ttl {
		_ = s.cache.Delete(ctx, s.key(sessionID))
		return Snapshot{}, ErrExpired
	}
	return snap, nil
}

// Delete removes the snapshot for the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, s.key(sessionID))
}
