package order

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	service "github.com/Additional-Code/tableside/internal/service/order"
	"github.com/Additional-Code/tableside/internal/tracker"
	"github.com/Additional-Code/tableside/internal/transport/http/middleware"
	"github.com/Additional-Code/tableside/internal/transport/http/response"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tableside/transport/http/order")

// Handler exposes the checkout, tracking and staff pipeline endpoints.
type Handler struct {
	svc     *service.Service
	tracker *tracker.Engine
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, engine *tracker.Engine) *Handler {
	return &Handler{svc: svc, tracker: engine}
}

// Register mounts order routes. Customer endpoints are open; the pipeline
// endpoints sit behind staff auth.
func Register(e *echo.Echo, h *Handler, auth middleware.TokenParser) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("/:number", h.getByNumber)

	s := e.Group("/sessions")
	s.GET("/:id", h.trackingState)
	s.POST("/:id/pickup", h.acknowledgePickup)

	staff := e.Group("/staff/orders", middleware.JWT(auth), middleware.RequireRole(string(entity.RoleStaff), string(entity.RoleAdmin)))
	staff.GET("", h.list)
	staff.POST("/:number/status", h.advance)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(
		attribute.Int("order.table", req.TableNumber),
	))
	defer span.End()

	result, err := h.svc.Create(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}

	if _, err := h.tracker.Track(ctx, req.SessionID, tracker.TrackedOrder{
		Number:        result.Order.Number,
		TableNumber:   result.Order.TableNumber,
		Items:         result.Order.Items,
		QueuePosition: result.QueuePosition,
		OrderedAt:     result.Order.CreatedAt,
	}); err != nil {
		return b.WithError(errorbank.Internal("failed to start tracking", errorbank.WithCause(err))).Build()
	}

	out := toDTO(result.Order)
	out.QueuePosition = result.QueuePosition
	return b.WithStatus(http.StatusCreated).
		WithData(out).
		WithMeta("session_id", req.SessionID).
		Build()
}

func (h *Handler) getByNumber(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByNumber", trace.WithAttributes(
		attribute.String("order.number", number),
	))
	defer span.End()

	order, err := h.svc.GetByNumber(ctx, number)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

// trackingState is what the customer view polls: displayed status, queue
// position and whether tracking is still live for the session.
func (h *Handler) trackingState(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "sessions.state")
	defer span.End()

	s, err := h.tracker.Resume(ctx, id)
	if err != nil {
		if errors.Is(err, tracker.ErrNoActiveOrder) {
			return b.WithError(errorbank.NotFound("no active order for session")).Build()
		}
		return b.WithError(errorbank.Internal("failed to resume session", errorbank.WithCause(err))).Build()
	}

	items := make([]dto.OrderItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.OrderItemResponse{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}

	return b.WithData(map[string]any{
		"session_id":     s.SessionID,
		"order_number":   s.OrderNumber,
		"table_number":   s.TableNumber,
		"status":         string(s.Status()),
		"queue_position": s.QueuePosition(),
		"items":          items,
		"ordered_at":     s.OrderedAt,
	}).Build()
}

// acknowledgePickup closes the loop on a ready order: the terminal
// transition is written first, then local tracking and the alert are torn
// down.
func (h *Handler) acknowledgePickup(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "sessions.pickup")
	defer span.End()

	s, err := h.tracker.Resume(ctx, id)
	if err != nil {
		if errors.Is(err, tracker.ErrNoActiveOrder) {
			return b.WithError(errorbank.NotFound("no active order for session")).Build()
		}
		return b.WithError(errorbank.Internal("failed to resume session", errorbank.WithCause(err))).Build()
	}

	order, err := h.svc.CompleteByPickup(ctx, s.OrderNumber)
	if err != nil {
		return b.WithError(err).Build()
	}
	if err := h.tracker.AcknowledgePickup(ctx, id); err != nil && !errors.Is(err, tracker.ErrNoActiveOrder) {
		return b.WithError(errorbank.Internal("failed to close session", errorbank.WithCause(err))).Build()
	}

	return b.WithData(toDTO(order)).Build()
}

// list serves the staff console: one pipeline column when status is given,
// every active order otherwise.
func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	var (
		orders []entity.Order
		err    error
	)
	if status := c.QueryParam("status"); status != "" {
		orders, err = h.svc.ListByStatus(ctx, entity.Status(status))
	} else {
		orders, err = h.svc.ListActive(ctx)
	}
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toDTO(&orders[i]))
	}
	return b.WithData(out).Build()
}

func (h *Handler) advance(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.advance", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.status.to", req.To),
	))
	defer span.End()

	order, err := h.svc.Advance(ctx, number, entity.Status(req.From), entity.Status(req.To))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func toDTO(order *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, dto.OrderItemResponse{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}
	return dto.OrderResponse{
		ID:            order.ID,
		Number:        order.Number,
		TableNumber:   order.TableNumber,
		Total:         order.Total,
		Status:        string(order.Status),
		PaymentMethod: order.PaymentMethod,
		Items:         items,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		CompletedAt:   order.CompletedAt,
	}
}
