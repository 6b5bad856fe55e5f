package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/config"
)

// Alert describes a ready order that should reach the customer.
type Alert struct {
	OrderNumber string    `json:"order_number"`
	TableNumber int       `json:"table_number"`
	ReadyAt     time.Time `json:"ready_at"`
	Repeat      bool      `json:"repeat"`
}

// Channel delivers an alert over one medium. Channels are best-effort:
// a failing channel is logged and must never block the others.
type Channel interface {
	Name() string
	Notify(ctx context.Context, alert Alert) error
}

// Dispatcher makes a ready order unmissable. The first trigger for an order
// fans out once to every channel and arms a repeat timer that re-alerts on a
// fixed interval until the customer acknowledges pickup or the order is torn
// down. Arming an already-armed order is a no-op; at most one timer runs per
// order.
type Dispatcher struct {
	channels []Channel
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	active map[string]chan struct{}
}

// NewDispatcher builds a Dispatcher over the given channels.
func NewDispatcher(cfg config.Config, logger *zap.Logger, channels ...Channel) *Dispatcher {
	interval := cfg.Orders.AlertInterval
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &Dispatcher{
		channels: channels,
		interval: interval,
		logger:   logger,
		active:   make(map[string]chan struct{}),
	}
}

// OrderReady fires the one-shot alert and arms the repeat timer for the
// order. Calling it again while the timer is armed does nothing, so a stream
// of snapshots all reporting ready alerts exactly once.
func (d *Dispatcher) OrderReady(ctx context.Context, orderNumber string, tableNumber int) {
	d.mu.Lock()
	if _, armed := d.active[orderNumber]; armed {
		d.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	d.active[orderNumber] = stop
	d.mu.Unlock()

	alert := Alert{OrderNumber: orderNumber, TableNumber: tableNumber, ReadyAt: time.Now().UTC()}
	d.fanOut(ctx, alert)

	go d.repeatLoop(alert, stop)
}

// Acknowledge cancels the repeat timer after the customer confirms pickup.
// Safe to call for orders that were never armed.
func (d *Dispatcher) Acknowledge(orderNumber string) {
	d.cancel(orderNumber)
}

// Stop tears down the repeat timer when tracking ends for any reason. A
// timer left running after its order is gone is a defect.
func (d *Dispatcher) Stop(orderNumber string) {
	d.cancel(orderNumber)
}

// StopAll cancels every armed timer; used on shutdown.
func (d *Dispatcher) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for number, stop := range d.active {
		close(stop)
		delete(d.active, number)
	}
}

// Armed reports whether a repeat timer is currently running for the order.
func (d *Dispatcher) Armed(orderNumber string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.active[orderNumber]
	return ok
}

func (d *Dispatcher) cancel(orderNumber string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if stop, ok := d.active[orderNumber]; ok {
		close(stop)
		delete(d.active, orderNumber)
	}
}

func (d *Dispatcher) repeatLoop(alert Alert, stop <-chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	alert.Repeat = true
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), d.interval)
			d.fanOut(ctx, alert)
			cancel()
		}
	}
}

// fanOut delivers to every channel independently; one failure never blocks
// or cancels the rest.
func (d *Dispatcher) fanOut(ctx context.Context, alert Alert) {
	for _, ch := range d.channels {
		if err := ch.Notify(ctx, alert); err != nil {
			d.logger.Warn("alert channel failed",
				zap.String("channel", ch.Name()),
				zap.String("order", alert.OrderNumber),
				zap.Error(err),
			)
		}
	}
}

// Module wires the dispatcher with the default channel set and ties timer
// teardown to the application lifecycle.
var Module = fx.Options(
	fx.Provide(NewDefaultDispatcher),
	fx.Invoke(func(lc fx.Lifecycle, d *Dispatcher) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				d.StopAll()
				return nil
			},
		})
	}),
)
