package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/messaging"
	ordersvc "github.com/Additional-Code/tableside/internal/service/order"
	"github.com/Additional-Code/tableside/internal/tracker"
	"github.com/Additional-Code/tableside/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/tableside/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewStatusEventHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewStatusEventHandler sets up the handler that reconciles session trackers
// whenever an order changes status. The event is only a wakeup signal: the
// handler reloads the full active order set and lets the tracker match
// sessions against it, so a missed or reordered event never leaves a session
// stuck on stale state.
func NewStatusEventHandler(svc *ordersvc.Service, engine *tracker.Engine, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.status", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.StatusEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode status event", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		logger.Debug("order status event",
			zap.Int64("id", event.OrderID),
			zap.String("number", event.Number),
			zap.String("from", string(event.From)),
			zap.String("to", string(event.To)),
		)

		orders, err := svc.ListActive(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list active failed")
			return err
		}

		views := make([]tracker.OrderView, 0, len(orders))
		for _, o := range orders {
			views = append(views, tracker.OrderView{
				ID:          o.ID,
				Number:      o.Number,
				TableNumber: o.TableNumber,
				Status:      o.Status,
				CreatedAt:   o.CreatedAt,
			})
		}
		engine.Apply(ctx, views)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.StatusTopic,
		Handler: handler,
	}
}
