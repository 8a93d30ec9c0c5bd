package express

import (
	"context"

	"github.com/google/uuid"

	quotepkg "github.com/opentechiz/express-checkout/internal/quote"
	"github.com/opentechiz/express-checkout/internal/session"
	"github.com/opentechiz/express-checkout/pkg/config"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
	"github.com/opentechiz/express-checkout/pkg/metrics"
)

type quoteLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
}

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type submitter interface {
	CreateOrder(ctx context.Context, quote *models.Quote) (*models.Order, error)
	UpdateAndPlace(ctx context.Context, quote *models.Quote, order *models.Order) (*models.Order, error)
	Submit(ctx context.Context, quote *models.Quote) (*models.Order, error)
}

type confirmationSender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

// PlaceResult carries the placed order plus the provider redirect the
// buyer must follow when payment completion happens out-of-band.
type PlaceResult struct {
	Order       *models.Order
	RedirectURL string
}

// BaseCheckout is the platform's standard express placement path, used
// when early order creation is disabled.
type BaseCheckout interface {
	Place(ctx context.Context, sess *session.State, token, shippingMethod string) (*PlaceResult, error)
}

// Service orchestrates the customized express checkout: it decides when an
// order is materialized relative to payment confirmation and drives the
// post-payment finalization.
type Service interface {
	CreateOrder(ctx context.Context, sess *session.State, shippingMethod string) (*models.Order, error)
	Place(ctx context.Context, sess *session.State, token, shippingMethod string) (*PlaceResult, error)
	AllowCreateOrderBeforePay() bool
}

type service struct {
	quotes     quoteLoader
	orders     orderLoader
	submission submitter
	notifier   confirmationSender
	base       BaseCheckout
	express    config.ExpressConfig
	paypal     config.PayPalConfig
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(
	quotes quoteLoader,
	orders orderLoader,
	submission submitter,
	notifier confirmationSender,
	base BaseCheckout,
	express config.ExpressConfig,
	paypal config.PayPalConfig,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if quotes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quote repository required")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order repository required")
	}
	if submission == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "submission service required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "confirmation sender required")
	}
	if base == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "base checkout required")
	}
	return &service{
		quotes:     quotes,
		orders:     orders,
		submission: submission,
		notifier:   notifier,
		base:       base,
		express:    express,
		paypal:     paypal,
		metrics:    checkoutMetrics,
		logg:       logg,
	}, nil
}

// AllowCreateOrderBeforePay reports whether orders are materialized before
// payment confirmation: the review step must be skippable and the store
// flag enabled.
func (s *service) AllowCreateOrderBeforePay() bool {
	return s.express.SkipOrderReviewStep && s.express.CreateOrderBeforePay
}

// CreateOrder materializes a pending order for the session's quote before
// the buyer confirms payment. A nil order with nil error means the quote
// had no visible items and nothing was created.
func (s *service) CreateOrder(ctx context.Context, sess *session.State, shippingMethod string) (*models.Order, error) {
	if sess == nil || sess.QuoteID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active quote in session")
	}

	quote, err := s.quotes.FindByID(ctx, *sess.QuoteID)
	if err != nil {
		return nil, err
	}
	prepareQuote(quote, shippingMethod, s.express.RequireBillingAddress)

	order, err := s.submission.CreateOrder(ctx, quote)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	sess.RecordOrder(quote.ID, order.ID, order.IncrementID)
	s.metrics.IncCreated()
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id":     order.ID,
			"increment_id": order.IncrementID,
		}), "pending order created ahead of payment")
	}
	return order, nil
}

// Place finalizes the checkout once the buyer returned from the provider.
// Until this moment all quote data must be valid.
func (s *service) Place(ctx context.Context, sess *session.State, token, shippingMethod string) (*PlaceResult, error) {
	if !s.AllowCreateOrderBeforePay() {
		return s.base.Place(ctx, sess, token, shippingMethod)
	}
	if sess == nil || sess.QuoteID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active quote in session")
	}

	quote, err := s.quotes.FindByID(ctx, *sess.QuoteID)
	if err != nil {
		return nil, err
	}
	prepareQuote(quote, shippingMethod, s.express.RequireBillingAddress)

	var order *models.Order
	if sess.LastOrderID != nil {
		existing, err := s.orders.FindByID(ctx, *sess.LastOrderID)
		if err != nil && pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
			return nil, err
		}
		order = existing
	}

	var placed *models.Order
	if order != nil {
		placed, err = s.submission.UpdateAndPlace(ctx, quote, order)
	} else {
		placed, err = s.submission.Submit(ctx, quote)
	}
	if err != nil {
		s.metrics.IncPlacementFailure()
		return nil, err
	}
	if placed == nil {
		return nil, nil
	}

	result := &PlaceResult{Order: placed}
	if placed.Payment.RequiresRedirect() {
		result.RedirectURL = s.paypal.ExpressCompleteURL(token)
	}

	switch {
	case placed.State == enums.OrderStatePendingPayment:
		// provider is waiting on a bank transfer; finalization arrives
		// asynchronously
	case placed.State.IsConfirmable():
		if err := s.notifier.SendOrderConfirmation(ctx, placed); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, placed.ID.String()), "order confirmation send failed")
		}
		sess.RecordOrder(quote.ID, placed.ID, placed.IncrementID)
		sess.Restart()
	}
	s.metrics.IncPlaced(placed.State.String())
	return result, nil
}

func prepareQuote(quote *models.Quote, shippingMethod string, requireBillingAddress bool) {
	quotepkg.ApplyShippingMethod(quote, shippingMethod)
	if quote.CheckoutMethod == enums.CheckoutMethodGuest {
		quotepkg.PrepareGuestQuote(quote)
	}
	quotepkg.SkipAddressValidation(quote, requireBillingAddress)
	quotepkg.CollectTotals(quote)
}
