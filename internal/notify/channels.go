package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/messaging"
)

// LogChannel records alerts in the structured log. It exists so an alert is
// always observable even when the bus is down.
type LogChannel struct {
	logger *zap.Logger
}

// NewLogChannel builds a LogChannel.
func NewLogChannel(logger *zap.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

// Name identifies the channel in failure logs.
func (c *LogChannel) Name() string { return "log" }

// Notify writes the alert to the log.
func (c *LogChannel) Notify(_ context.Context, alert Alert) error {
	c.logger.Info("order ready alert",
		zap.String("order", alert.OrderNumber),
		zap.Int("table", alert.TableNumber),
		zap.Bool("repeat", alert.Repeat),
	)
	return nil
}

// BusChannel publishes alerts on the message bus; connected clients (the
// customer device, a kitchen display) subscribe to the alert topic and render
// sound, vibration or a banner on their side.
type BusChannel struct {
	client messaging.Client
	topic  string
}

// NewBusChannel builds a BusChannel targeting the configured alert topic.
func NewBusChannel(cfg config.Config, client messaging.Client) *BusChannel {
	return &BusChannel{client: client, topic: cfg.Messaging.Kafka.AlertTopic}
}

// Name identifies the channel in failure logs.
func (c *BusChannel) Name() string { return "bus" }

// Notify publishes the alert event.
func (c *BusChannel) Notify(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	key := []byte(fmt.Sprintf("alert-%s", alert.OrderNumber))
	return c.client.PublishTo(ctx, c.topic, key, payload)
}

// NewDefaultDispatcher assembles the dispatcher with the log and bus
// channels.
func NewDefaultDispatcher(cfg config.Config, logger *zap.Logger, client messaging.Client) *Dispatcher {
	return NewDispatcher(cfg, logger,
		NewLogChannel(logger),
		NewBusChannel(cfg, client),
	)
}
