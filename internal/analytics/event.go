package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindItemAdded         Kind = "item_added"
	KindItemRemoved       Kind = "item_removed"
	KindQuantityUpdated   Kind = "quantity_updated"
	KindCartCleared       Kind = "cart_cleared"
	KindCheckoutCompleted Kind = "checkout_completed"
)

// Event describes one cart mutation. A completed purchase and an abandoned
// clear both empty the cart but carry different kinds.
type Event struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	SessionID  string          `json:"session_id"`
	ProductID  int64           `json:"product_id,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
