package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
)

// Payload carries the data attached to a submit lifecycle event.
type Payload struct {
	OrderID     uuid.UUID `json:"order_id"`
	QuoteID     uuid.UUID `json:"quote_id"`
	IncrementID string    `json:"increment_id,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Bus dispatches submit lifecycle events.
type Bus interface {
	Dispatch(ctx context.Context, event enums.SubmitEvent, payload Payload) error
}

type outboxBus struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewOutboxBus writes dispatched events to the outbox table; a downstream
// relay fans them out to listeners.
func NewOutboxBus(db *gorm.DB, logg *logger.Logger) (Bus, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db connection required")
	}
	return &outboxBus{db: db, logg: logg}, nil
}

func (b *outboxBus) Dispatch(ctx context.Context, event enums.SubmitEvent, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode event payload")
	}

	record := models.OutboxEvent{
		ID:          uuid.New(),
		EventType:   event.String(),
		AggregateID: payload.OrderID,
		Payload:     raw,
	}
	if err := b.db.WithContext(ctx).Create(&record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist event")
	}

	if b.logg != nil {
		b.logg.Info(b.logg.WithFields(ctx, map[string]any{
			"event":    event.String(),
			"order_id": payload.OrderID,
		}), "event dispatched")
	}
	return nil
}
