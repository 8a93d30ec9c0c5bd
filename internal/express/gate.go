package express

import (
	"context"

	"github.com/google/uuid"

	"github.com/opentechiz/express-checkout/internal/events"
	"github.com/opentechiz/express-checkout/internal/session"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
	"github.com/opentechiz/express-checkout/pkg/metrics"
)

type tokenProvider interface {
	AcquireToken(ctx context.Context) (string, error)
}

type orderCanceller interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, order *models.Order) error
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, event enums.SubmitEvent, payload events.Payload) error
}

// TokenGate acquires the provider token and reconciles leftovers from an
// abandoned attempt: a pending order still tied to the session's current
// quote is canceled before a fresh attempt proceeds.
type TokenGate struct {
	provider tokenProvider
	orders   orderCanceller
	checkout Service
	events   eventDispatcher
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewTokenGate builds the token exchange gate.
func NewTokenGate(
	provider tokenProvider,
	orders orderCanceller,
	checkout Service,
	bus eventDispatcher,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (*TokenGate, error) {
	if provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "token provider required")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order repository required")
	}
	if checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout service required")
	}
	if bus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event bus required")
	}
	return &TokenGate{
		provider: provider,
		orders:   orders,
		checkout: checkout,
		events:   bus,
		metrics:  checkoutMetrics,
		logg:     logg,
	}, nil
}

// AcquireToken fetches a token from the provider. When a token is issued
// and early order creation is enabled, any stale pending order from an
// earlier pass over the same quote is canceled, the session pointers are
// cleared, and a fresh pending order is created.
func (g *TokenGate) AcquireToken(ctx context.Context, sess *session.State) (string, error) {
	token, err := g.provider.AcquireToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" || !g.checkout.AllowCreateOrderBeforePay() {
		return token, nil
	}

	if err := g.cancelStaleOrder(ctx, sess); err != nil {
		return "", err
	}
	if _, err := g.checkout.CreateOrder(ctx, sess, ""); err != nil {
		return "", err
	}
	return token, nil
}

func (g *TokenGate) cancelStaleOrder(ctx context.Context, sess *session.State) error {
	if sess == nil || sess.LastOrderID == nil {
		return nil
	}

	order, err := g.orders.FindByID(ctx, *sess.LastOrderID)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return nil
		}
		return err
	}
	if sess.QuoteID == nil || order.QuoteID != *sess.QuoteID {
		return nil
	}

	if err := g.orders.Cancel(ctx, order); err != nil {
		return err
	}
	if err := g.events.Dispatch(ctx, enums.EventOrderCanceled, events.Payload{
		OrderID:     order.ID,
		QuoteID:     order.QuoteID,
		IncrementID: order.IncrementID,
	}); err != nil {
		return err
	}
	sess.ClearOrderRefs()
	g.metrics.IncCanceled()
	if g.logg != nil {
		g.logg.Info(g.logg.WithOrderID(ctx, order.ID.String()), "stale pending order canceled before new attempt")
	}
	return nil
}
