package submission

import (
	"context"

	"gorm.io/gorm"

	"github.com/opentechiz/express-checkout/internal/orders"
	"github.com/opentechiz/express-checkout/internal/quote"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
)

// TxRunner executes fn inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type txCheckoutUnit struct {
	runner    TxRunner
	orderRepo orders.Repository
	quoteRepo quote.Repository
}

// NewCheckoutUnit binds the order and quote repositories to a shared
// transaction boundary.
func NewCheckoutUnit(runner TxRunner, orderRepo orders.Repository, quoteRepo quote.Repository) (CheckoutUnit, error) {
	if runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if orderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order repository required")
	}
	if quoteRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quote repository required")
	}
	return &txCheckoutUnit{runner: runner, orderRepo: orderRepo, quoteRepo: quoteRepo}, nil
}

func (u *txCheckoutUnit) SaveOrderAndQuote(ctx context.Context, order *models.Order, qt *models.Quote) error {
	return u.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := u.orderRepo.WithTx(tx).Save(ctx, order); err != nil {
			return err
		}
		return u.quoteRepo.WithTx(tx).Save(ctx, qt)
	})
}
