package submission

import (
	"context"

	"github.com/google/uuid"

	"github.com/opentechiz/express-checkout/internal/events"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
)

// CheckoutUnit persists a freshly created order together with its quote:
// either both land or neither does.
type CheckoutUnit interface {
	SaveOrderAndQuote(ctx context.Context, order *models.Order, quote *models.Quote) error
}

// QuoteStore persists quote aggregates.
type QuoteStore interface {
	Save(ctx context.Context, quote *models.Quote) error
}

// OrderPlacer runs the platform's final placement step: it assigns the
// order's final state and triggers registered listeners.
type OrderPlacer interface {
	Place(ctx context.Context, order *models.Order) (*models.Order, error)
}

// AddressStore removes order addresses during compensating cleanup.
type AddressStore interface {
	DeleteAddress(ctx context.Context, addressID uuid.UUID) error
}

// EventBus dispatches submit lifecycle events.
type EventBus interface {
	Dispatch(ctx context.Context, event enums.SubmitEvent, payload events.Payload) error
}

// IncrementReserver hands out fresh human-facing order references and
// reports whether a reference is already claimed by a persisted order.
type IncrementReserver interface {
	Reserve(ctx context.Context) (string, error)
	InUse(ctx context.Context, incrementID string) (bool, error)
}
