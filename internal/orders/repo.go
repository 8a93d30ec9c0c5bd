package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
)

// Repository loads and persists order aggregates.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	Cancel(ctx context.Context, order *models.Order) error
	DeleteAddress(ctx context.Context, addressID uuid.UUID) error
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Addresses").
		Preload("Payment").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

func (r *repository) Save(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return nil
}

// Cancel marks the order canceled and persists the transition.
func (r *repository) Cancel(ctx context.Context, order *models.Order) error {
	if order.State == enums.OrderStateCanceled {
		return nil
	}
	now := time.Now().UTC()
	order.State = enums.OrderStateCanceled
	order.CanceledAt = &now
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{"state": enums.OrderStateCanceled, "canceled_at": now}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return nil
}

func (r *repository) DeleteAddress(ctx context.Context, addressID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Delete(&models.OrderAddress{}, "id = ?", addressID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order address")
	}
	return nil
}

// IncrementReserver hands out the human-facing order references and
// reports whether a reference is already claimed by a persisted order.
type IncrementReserver interface {
	Reserve(ctx context.Context) (string, error)
	InUse(ctx context.Context, incrementID string) (bool, error)
}

type sequenceReserver struct {
	db *gorm.DB
}

// NewIncrementReserver reserves increment ids from the database sequence.
func NewIncrementReserver(db *gorm.DB) IncrementReserver {
	return &sequenceReserver{db: db}
}

func (r *sequenceReserver) Reserve(ctx context.Context) (string, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval('order_increment_seq')").
		Scan(&next).Error
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve order increment id")
	}
	return fmt.Sprintf("%d", next), nil
}

// InUse reports whether an order already carries the increment id. A
// canceled order keeps its reference, so a reservation it claimed must
// never be handed to a later order.
func (r *sequenceReserver) InUse(ctx context.Context, incrementID string) (bool, error) {
	if incrementID == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("increment_id = ?", incrementID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order increment id")
	}
	return count > 0, nil
}
