package submission

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/opentechiz/express-checkout/internal/events"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
)

// Service converts quotes into orders. CreateOrder materializes a pending
// order ahead of payment confirmation; UpdateAndPlace finalizes that order
// in place on the buyer's return; Submit is the standard single-pass path.
//
// A nil order with a nil error means the quote had no visible items: the
// quote is deactivated and callers silently no-op.
type Service interface {
	CreateOrder(ctx context.Context, quote *models.Quote) (*models.Order, error)
	UpdateAndPlace(ctx context.Context, quote *models.Quote, order *models.Order) (*models.Order, error)
	Submit(ctx context.Context, quote *models.Quote) (*models.Order, error)
}

type service struct {
	units      CheckoutUnit
	quotes     QuoteStore
	placer     OrderPlacer
	addresses  AddressStore
	events     EventBus
	increments IncrementReserver
	logg       *logger.Logger
}

// NewService builds the submission service with the required collaborators.
func NewService(
	units CheckoutUnit,
	quotes QuoteStore,
	placer OrderPlacer,
	addresses AddressStore,
	bus EventBus,
	increments IncrementReserver,
	logg *logger.Logger,
) (Service, error) {
	if units == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout unit required")
	}
	if quotes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quote store required")
	}
	if placer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order placer required")
	}
	if addresses == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address store required")
	}
	if bus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event bus required")
	}
	if increments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "increment reserver required")
	}
	return &service{
		units:      units,
		quotes:     quotes,
		placer:     placer,
		addresses:  addresses,
		events:     bus,
		increments: increments,
		logg:       logg,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, quote *models.Quote) (*models.Order, error) {
	if len(quote.VisibleItems()) == 0 {
		quote.IsActive = false
		return nil, nil
	}

	order := &models.Order{State: enums.OrderStateNew}
	pendingSync, err := s.convert(ctx, quote, order)
	if err != nil {
		return nil, err
	}
	order.State = enums.OrderStatePendingPayment

	if err := s.units.SaveOrderAndQuote(ctx, order, quote); err != nil {
		return nil, s.rollback(ctx, quote, order, pendingSync, err)
	}
	return order, nil
}

func (s *service) UpdateAndPlace(ctx context.Context, quote *models.Quote, order *models.Order) (*models.Order, error) {
	if len(quote.VisibleItems()) == 0 {
		quote.IsActive = false
		return nil, nil
	}

	pendingSync, err := s.convert(ctx, quote, order)
	if err != nil {
		return nil, err
	}
	return s.placeQuoteOrder(ctx, quote, order, pendingSync)
}

func (s *service) Submit(ctx context.Context, quote *models.Quote) (*models.Order, error) {
	if len(quote.VisibleItems()) == 0 {
		quote.IsActive = false
		return nil, nil
	}

	order := &models.Order{State: enums.OrderStateNew}
	pendingSync, err := s.convert(ctx, quote, order)
	if err != nil {
		return nil, err
	}
	return s.placeQuoteOrder(ctx, quote, order, pendingSync)
}

// placeQuoteOrder drives final placement: before event, external placement,
// quote deactivation, success event, quote save. Failures past the before
// event run compensating cleanup and re-raise.
func (s *service) placeQuoteOrder(ctx context.Context, quote *models.Quote, order *models.Order, pendingSync []uuid.UUID) (*models.Order, error) {
	if err := s.events.Dispatch(ctx, enums.EventQuoteSubmitBefore, eventPayload(order, quote, nil)); err != nil {
		return nil, err
	}

	placed, err := s.placer.Place(ctx, order)
	if err != nil {
		return nil, s.rollback(ctx, quote, order, pendingSync, err)
	}

	quote.IsActive = false
	if err := s.events.Dispatch(ctx, enums.EventQuoteSubmitSuccess, eventPayload(placed, quote, nil)); err != nil {
		return nil, s.rollback(ctx, quote, placed, pendingSync, err)
	}
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, s.rollback(ctx, quote, placed, pendingSync, err)
	}
	return placed, nil
}

// convert runs the shared quote-to-order conversion. It is idempotent:
// order items, addresses, and the payment record are matched back to their
// quote-side keys so a second pass updates in place instead of duplicating.
// The returned ids identify addresses created by this attempt, for cleanup
// if it fails.
func (s *service) convert(ctx context.Context, quote *models.Quote, order *models.Order) ([]uuid.UUID, error) {
	if err := validateBeforeSubmit(quote); err != nil {
		return nil, err
	}
	if err := s.ensureIncrementID(ctx, quote, order); err != nil {
		return nil, err
	}

	var pendingSync []uuid.UUID
	addresses := make([]models.OrderAddress, 0, 2)

	if !quote.IsVirtual {
		src := quote.ShippingAddress()
		shipping := convertAddress(quote, src, enums.AddressTypeShipping)
		if existing := addressByQuoteAddressID(order, src.ID); existing != nil {
			shipping.ID = existing.ID
			shipping.OrderID = existing.OrderID
		} else {
			shipping.ID = uuid.New()
			pendingSync = append(pendingSync, shipping.ID)
		}
		addresses = append(addresses, shipping)
		order.ShippingMethod = src.ShippingMethod
	}

	billingSrc := quote.BillingAddress()
	billing := convertAddress(quote, billingSrc, enums.AddressTypeBilling)
	if existing := addressByQuoteAddressID(order, billingSrc.ID); existing != nil {
		billing.ID = existing.ID
		billing.OrderID = existing.OrderID
	} else {
		billing.ID = uuid.New()
		pendingSync = append(pendingSync, billing.ID)
	}
	addresses = append(addresses, billing)
	order.Addresses = addresses

	payment := models.OrderPayment{
		Method:         quote.Payment.Method,
		AdditionalInfo: quote.Payment.AdditionalInfo,
	}
	if order.Payment != nil && order.Payment.ID != uuid.Nil {
		payment.ID = order.Payment.ID
		payment.OrderID = order.Payment.OrderID
	}
	order.Payment = &payment

	visible := quote.VisibleItems()
	items := make([]models.OrderItem, 0, len(visible))
	for _, quoteItem := range visible {
		item := models.OrderItem{
			QuoteItemID:    quoteItem.ID,
			ProductSKU:     quoteItem.ProductSKU,
			Name:           quoteItem.Name,
			Qty:            quoteItem.Qty,
			UnitPriceCents: quoteItem.UnitPriceCents,
			RowTotalCents:  quoteItem.RowTotalCents,
		}
		if existing := order.ItemByQuoteItemID(quoteItem.ID); existing != nil {
			item.ID = existing.ID
			item.OrderID = existing.OrderID
		}
		items = append(items, item)
	}
	order.Items = items

	if quote.CustomerID != nil {
		customerID := *quote.CustomerID
		order.CustomerID = &customerID
	}
	order.QuoteID = quote.ID
	order.CustomerEmail = quote.CustomerEmail
	order.CustomerFirstname = quote.CustomerFirstname
	order.CustomerMiddlename = quote.CustomerMiddlename
	order.CustomerLastname = quote.CustomerLastname
	order.SubtotalCents = quote.SubtotalCents
	order.GrandTotalCents = quote.GrandTotalCents

	return pendingSync, nil
}

// ensureIncrementID keeps the human-facing reference stable. An order
// without one gets the quote's reservation, reserving fresh if the quote
// has none or its reservation is already claimed by a persisted order
// (a canceled attempt keeps its reference). An order whose reference no
// longer matches the quote keeps it; the quote gets a new reservation so
// the claimed reference is not reused.
func (s *service) ensureIncrementID(ctx context.Context, quote *models.Quote, order *models.Order) error {
	switch {
	case order.IncrementID == "":
		if quote.ReservedOrderID != "" {
			used, err := s.increments.InUse(ctx, quote.ReservedOrderID)
			if err != nil {
				return err
			}
			if used {
				if s.logg != nil {
					s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
						"quote_reserved_id": quote.ReservedOrderID,
					}), "quote reservation already claimed by an order, reserving fresh")
				}
				quote.ReservedOrderID = ""
			}
		}
		if quote.ReservedOrderID == "" {
			reserved, err := s.increments.Reserve(ctx)
			if err != nil {
				return err
			}
			quote.ReservedOrderID = reserved
		}
		order.IncrementID = quote.ReservedOrderID
	case order.IncrementID != quote.ReservedOrderID:
		reserved, err := s.increments.Reserve(ctx)
		if err != nil {
			return err
		}
		quote.ReservedOrderID = reserved
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_increment_id": order.IncrementID,
				"quote_reserved_id":  reserved,
			}), "quote reservation drifted from assigned order reference")
		}
	}
	return nil
}

// rollback is the compensating cleanup: addresses created by this attempt
// are deleted and the failure event is dispatched. A failure inside the
// cleanup itself is combined with the original error, which stays
// discoverable as the cause.
func (s *service) rollback(ctx context.Context, quote *models.Quote, order *models.Order, pendingSync []uuid.UUID, original error) error {
	for _, addressID := range pendingSync {
		if err := s.addresses.DeleteAddress(ctx, addressID); err != nil {
			return secondaryFailure(original, err)
		}
	}
	if err := s.events.Dispatch(ctx, enums.EventQuoteSubmitFailure, eventPayload(order, quote, original)); err != nil {
		return secondaryFailure(original, err)
	}
	return original
}

func secondaryFailure(original, secondary error) error {
	return pkgerrors.Wrap(
		pkgerrors.CodeInternal,
		multierr.Append(original, secondary),
		"quote submit failure handling failed",
	)
}

func eventPayload(order *models.Order, quote *models.Quote, cause error) events.Payload {
	payload := events.Payload{
		QuoteID: quote.ID,
	}
	if order != nil {
		payload.OrderID = order.ID
		payload.IncrementID = order.IncrementID
	}
	if cause != nil {
		payload.Error = cause.Error()
	}
	return payload
}

func validateBeforeSubmit(quote *models.Quote) error {
	if quote.Payment == nil || quote.Payment.Method == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}
	if quote.BillingAddress() == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "billing address required")
	}
	if !quote.IsVirtual && quote.ShippingAddress() == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if quote.CustomerEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	return nil
}

func convertAddress(quote *models.Quote, src *models.QuoteAddress, addressType enums.AddressType) models.OrderAddress {
	email := src.Email
	if email == "" {
		email = quote.CustomerEmail
	}
	return models.OrderAddress{
		QuoteAddressID: src.ID,
		AddressType:    addressType,
		Email:          email,
		Firstname:      src.Firstname,
		Lastname:       src.Lastname,
		Street:         src.Street,
		City:           src.City,
		Region:         src.Region,
		PostalCode:     src.PostalCode,
		CountryCode:    src.CountryCode,
		Telephone:      src.Telephone,
	}
}

func addressByQuoteAddressID(order *models.Order, quoteAddressID uuid.UUID) *models.OrderAddress {
	for i := range order.Addresses {
		if order.Addresses[i].QuoteAddressID == quoteAddressID {
			return &order.Addresses[i]
		}
	}
	return nil
}
