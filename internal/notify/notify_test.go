package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/config"
)

type recordChannel struct {
	name string
	err  error

	mu     sync.Mutex
	alerts []Alert
}

func (c *recordChannel) Name() string { return c.name }

func (c *recordChannel) Notify(_ context.Context, alert Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
	return c.err
}

func (c *recordChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alerts)
}

func (c *recordChannel) last() Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alerts[len(c.alerts)-1]
}

func newTestDispatcher(interval time.Duration, channels ...Channel) *Dispatcher {
	cfg := config.Config{}
	cfg.Orders.AlertInterval = interval
	return NewDispatcher(cfg, zap.NewNop(), channels...)
}

func TestOrderReadyFansOutOnce(t *testing.T) {
	ch := &recordChannel{name: "test"}
	d := newTestDispatcher(time.Hour, ch)
	defer d.StopAll()

	d.OrderReady(context.Background(), "#042", 4)

	require.Equal(t, 1, ch.count())
	alert := ch.last()
	assert.Equal(t, "#042", alert.OrderNumber)
	assert.Equal(t, 4, alert.TableNumber)
	assert.False(t, alert.Repeat)
	assert.True(t, d.Armed("#042"))
}

func TestOrderReadyIdempotentWhileArmed(t *testing.T) {
	ch := &recordChannel{name: "test"}
	d := newTestDispatcher(time.Hour, ch)
	defer d.StopAll()

	for i := 0; i < 5; i++ {
		d.OrderReady(context.Background(), "#042", 4)
	}
	assert.Equal(t, 1, ch.count())
}

func TestRepeatUntilAcknowledged(t *testing.T) {
	ch := &recordChannel{name: "test"}
	d := newTestDispatcher(10*time.Millisecond, ch)
	defer d.StopAll()

	d.OrderReady(context.Background(), "#042", 4)

	require.Eventually(t, func() bool { return ch.count() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, ch.last().Repeat)

	d.Acknowledge("#042")
	assert.False(t, d.Armed("#042"))

	settled := ch.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, ch.count())
}

func TestAcknowledgeUnknownOrderIsSafe(t *testing.T) {
	d := newTestDispatcher(time.Hour, &recordChannel{name: "test"})
	d.Acknowledge("#999")
	d.Stop("#999")
}

func TestChannelFailureDoesNotBlockOthers(t *testing.T) {
	failing := &recordChannel{name: "bad", err: errors.New("boom")}
	healthy := &recordChannel{name: "good"}
	d := newTestDispatcher(time.Hour, failing, healthy)
	defer d.StopAll()

	d.OrderReady(context.Background(), "#042", 4)

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestRearmAfterStop(t *testing.T) {
	ch := &recordChannel{name: "test"}
	d := newTestDispatcher(time.Hour, ch)
	defer d.StopAll()

	d.OrderReady(context.Background(), "#042", 4)
	d.Stop("#042")
	require.False(t, d.Armed("#042"))

	// A later ready transition for a recycled number arms a fresh alert.
	d.OrderReady(context.Background(), "#042", 7)
	assert.Equal(t, 2, ch.count())
	assert.True(t, d.Armed("#042"))
}

func TestStopAll(t *testing.T) {
	d := newTestDispatcher(time.Hour, &recordChannel{name: "test"})
	d.OrderReady(context.Background(), "#041", 1)
	d.OrderReady(context.Background(), "#042", 2)

	d.StopAll()
	assert.False(t, d.Armed("#041"))
	assert.False(t, d.Armed("#042"))
}
