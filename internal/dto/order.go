package dto

import "time"

// OrderItemResponse is one cart line as exposed via transport layers.
type OrderItemResponse struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID            int64               `json:"id"`
	Number        string              `json:"number"`
	TableNumber   int                 `json:"table_number"`
	Total         int64               `json:"total"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Items         []OrderItemResponse `json:"items"`
	QueuePosition int                 `json:"queue_position,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	SessionID     string                   `json:"session_id" validate:"required"`
	TableNumber   int                      `json:"table_number" validate:"required,min=1"`
	PaymentMethod string                   `json:"payment_method" validate:"required"`
	Items         []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderItemRequest is one cart line at checkout.
type CreateOrderItemRequest struct {
	MenuItemID int64 `json:"menu_item_id" validate:"required"`
	Quantity   int   `json:"quantity" validate:"required,min=1"`
}

// UpdateStatusRequest advances an order through the staff pipeline.
type UpdateStatusRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}
