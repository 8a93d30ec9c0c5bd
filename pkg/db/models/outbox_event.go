package models

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a durable record of a dispatched domain event.
type OutboxEvent struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType   string    `gorm:"column:event_type;not null"`
	AggregateID uuid.UUID `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload     []byte    `gorm:"column:payload;type:jsonb"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
