package notifications

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opentechiz/express-checkout/pkg/db/models"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
)

const eventOrderConfirmationQueued = "order_confirmation_queued"

// Sender delivers the order confirmation to the buyer.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

type queueSender struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewQueueSender enqueues confirmations through the outbox table; the mail
// worker picks them up asynchronously.
func NewQueueSender(db *gorm.DB, logg *logger.Logger) (Sender, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db connection required")
	}
	return &queueSender{db: db, logg: logg}, nil
}

func (s *queueSender) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	payload, err := json.Marshal(map[string]string{
		"order_id":     order.ID.String(),
		"increment_id": order.IncrementID,
		"email":        order.CustomerEmail,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode confirmation payload")
	}

	record := models.OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventOrderConfirmationQueued,
		AggregateID: order.ID,
		Payload:     payload,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order confirmation")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order confirmation queued")
	}
	return nil
}
