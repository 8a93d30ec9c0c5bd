package quote

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opentechiz/express-checkout/pkg/db/models"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
)

// Repository loads and persists quote aggregates.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Save(ctx context.Context, quote *models.Quote) error
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed quote repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Addresses").
		Preload("Payment").
		First(&quote, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return &quote, nil
}

func (r *repository) Save(ctx context.Context, quote *models.Quote) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(quote).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save quote")
	}
	return nil
}
