package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order represents one table's checkout stored in the relational database.
// Number is the customer-facing order number in the form "#NNN"; it is
// random, low-cardinality and deliberately not unique. ID is the store's
// own key.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            int64       `bun:",pk,autoincrement"`
	Number        string      `bun:"number"`
	TableNumber   int         `bun:"table_number"`
	Total         int64       `bun:"total"`
	Status        Status      `bun:"status"`
	PaymentMethod string      `bun:"payment_method"`
	Items         []OrderItem `bun:"rel:has-many,join:id=order_id"`
	CreatedAt     time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time   `bun:"updated_at,nullzero"`
	CompletedAt   *time.Time  `bun:"completed_at"`
}

// ItemTotal sums price times quantity over the line items. Total is set
// from this once at creation and never recomputed afterwards.
func (o *Order) ItemTotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.UnitPrice * int64(it.Quantity)
	}
	return sum
}

// Completed reports whether the order reached its terminal state.
func (o *Order) Completed() bool {
	return o.Status == StatusCompleted
}

// OrderItem is one cart line of an order. Position preserves the cart's
// insertion order for display.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID         int64  `bun:",pk,autoincrement"`
	OrderID    int64  `bun:"order_id"`
	MenuItemID int64  `bun:"menu_item_id"`
	Name       string `bun:"name"`
	UnitPrice  int64  `bun:"unit_price"`
	Quantity   int    `bun:"quantity"`
	Position   int    `bun:"position"`
}
