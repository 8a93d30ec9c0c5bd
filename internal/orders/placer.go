package orders

import (
	"context"

	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
)

// paymentAuthorizer is the provider-side capture/authorize step run during
// placement.
type paymentAuthorizer interface {
	Authorize(ctx context.Context, order *models.Order) (enums.OrderState, error)
}

// Placer runs final order placement: the payment is authorized and the
// order transitions out of its pre-placement state.
type Placer struct {
	repo       Repository
	authorizer paymentAuthorizer
}

// NewPlacer builds the default placement pipeline.
func NewPlacer(repo Repository, authorizer paymentAuthorizer) (*Placer, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if authorizer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment authorizer required")
	}
	return &Placer{repo: repo, authorizer: authorizer}, nil
}

// Place authorizes payment for the order, assigns its final state, and
// persists it.
func (p *Placer) Place(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	state, err := p.authorizer.Authorize(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "authorize payment")
	}
	if !state.IsValid() {
		state = enums.OrderStateProcessing
	}
	order.State = state

	if err := p.repo.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
