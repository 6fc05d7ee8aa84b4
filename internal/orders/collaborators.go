package orders

import (
	"context"
	"time"

	"storefront/internal/cart"
	"storefront/internal/models"
)

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks storefront/internal/orders Notifier,OrderStore,StockStore

// Notifier hands a text to the messaging channel for a phone number and
// returns the link that delivers it.
type Notifier interface {
	Notify(ctx context.Context, phone, text string) (string, error)
}

type OrderStore interface {
	InsertOrder(ctx context.Context, order models.Order) error
	FindOrder(ctx context.Context, id string) (models.Order, error)
	// UpdateOrderStatus moves the order from one status to another and
	// reports false when the order was no longer in status from.
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) (bool, error)
}

// StockStore applies a floored decrement and returns the stock left.
type StockStore interface {
	DecrementStock(ctx context.Context, productID string, quantity int) (int, error)
}

// Carts is the session cart access the checkout needs.
type Carts interface {
	Get(ctx context.Context, sessionID string) (cart.State, error)
	Clear(ctx context.Context, sessionID string) error
}
