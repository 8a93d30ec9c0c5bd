package express

import (
	"context"

	"github.com/opentechiz/express-checkout/internal/session"
	"github.com/opentechiz/express-checkout/pkg/config"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
)

type quoteSubmitter interface {
	Submit(ctx context.Context, quote *models.Quote) (*models.Order, error)
}

// standardCheckout is the stock placement path: the order is submitted in
// a single pass when the buyer confirms, with no pre-created order to
// reconcile.
type standardCheckout struct {
	quotes     quoteLoader
	submission quoteSubmitter
	notifier   confirmationSender
	express    config.ExpressConfig
	paypal     config.PayPalConfig
	logg       *logger.Logger
}

// NewStandardCheckout builds the base placement path used when early
// order creation is disabled.
func NewStandardCheckout(
	quotes quoteLoader,
	submission quoteSubmitter,
	notifier confirmationSender,
	express config.ExpressConfig,
	paypal config.PayPalConfig,
	logg *logger.Logger,
) (BaseCheckout, error) {
	if quotes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quote repository required")
	}
	if submission == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "submission service required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "confirmation sender required")
	}
	return &standardCheckout{
		quotes:     quotes,
		submission: submission,
		notifier:   notifier,
		express:    express,
		paypal:     paypal,
		logg:       logg,
	}, nil
}

func (s *standardCheckout) Place(ctx context.Context, sess *session.State, token, shippingMethod string) (*PlaceResult, error) {
	if sess == nil || sess.QuoteID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active quote in session")
	}

	quote, err := s.quotes.FindByID(ctx, *sess.QuoteID)
	if err != nil {
		return nil, err
	}
	prepareQuote(quote, shippingMethod, s.express.RequireBillingAddress)

	placed, err := s.submission.Submit(ctx, quote)
	if err != nil {
		return nil, err
	}
	if placed == nil {
		return nil, nil
	}

	result := &PlaceResult{Order: placed}
	if placed.Payment.RequiresRedirect() {
		result.RedirectURL = s.paypal.ExpressCompleteURL(token)
	}
	if placed.State.IsConfirmable() {
		if err := s.notifier.SendOrderConfirmation(ctx, placed); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, placed.ID.String()), "order confirmation send failed")
		}
		sess.RecordOrder(quote.ID, placed.ID, placed.IncrementID)
		sess.Restart()
	}
	return result, nil
}
