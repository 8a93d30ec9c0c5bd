package submission

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentechiz/express-checkout/internal/events"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
)

type stubCheckoutUnit struct {
	savedOrders []*models.Order
	savedQuotes []*models.Quote
	saveFn      func(ctx context.Context, order *models.Order, quote *models.Quote) error
}

func (s *stubCheckoutUnit) SaveOrderAndQuote(ctx context.Context, order *models.Order, quote *models.Quote) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, order, quote)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.savedOrders = append(s.savedOrders, order)
	s.savedQuotes = append(s.savedQuotes, quote)
	return nil
}

type stubQuoteStore struct {
	saved  []*models.Quote
	saveFn func(ctx context.Context, quote *models.Quote) error
}

func (s *stubQuoteStore) Save(ctx context.Context, quote *models.Quote) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, quote)
	}
	s.saved = append(s.saved, quote)
	return nil
}

type stubPlacer struct {
	placed  []*models.Order
	placeFn func(ctx context.Context, order *models.Order) (*models.Order, error)
}

func (s *stubPlacer) Place(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.placeFn != nil {
		return s.placeFn(ctx, order)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.State = enums.OrderStateProcessing
	s.placed = append(s.placed, order)
	return order, nil
}

type stubAddressStore struct {
	deleted  []uuid.UUID
	deleteFn func(ctx context.Context, addressID uuid.UUID) error
}

func (s *stubAddressStore) DeleteAddress(ctx context.Context, addressID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, addressID)
	}
	s.deleted = append(s.deleted, addressID)
	return nil
}

type dispatched struct {
	event   enums.SubmitEvent
	payload events.Payload
}

type stubBus struct {
	dispatches []dispatched
	dispatchFn func(ctx context.Context, event enums.SubmitEvent, payload events.Payload) error
}

func (s *stubBus) Dispatch(ctx context.Context, event enums.SubmitEvent, payload events.Payload) error {
	if s.dispatchFn != nil {
		if err := s.dispatchFn(ctx, event, payload); err != nil {
			return err
		}
	}
	s.dispatches = append(s.dispatches, dispatched{event: event, payload: payload})
	return nil
}

func (s *stubBus) eventNames() []enums.SubmitEvent {
	names := make([]enums.SubmitEvent, 0, len(s.dispatches))
	for _, d := range s.dispatches {
		names = append(names, d.event)
	}
	return names
}

type stubReserver struct {
	next  int64
	calls int
	used  map[string]bool
}

func (s *stubReserver) Reserve(context.Context) (string, error) {
	s.calls++
	s.next++
	return fmt.Sprintf("9%08d", s.next), nil
}

func (s *stubReserver) InUse(_ context.Context, incrementID string) (bool, error) {
	return s.used[incrementID], nil
}

type fixture struct {
	svc       Service
	units     *stubCheckoutUnit
	quotes    *stubQuoteStore
	placer    *stubPlacer
	addresses *stubAddressStore
	bus       *stubBus
	reserver  *stubReserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		units:     &stubCheckoutUnit{},
		quotes:    &stubQuoteStore{},
		placer:    &stubPlacer{},
		addresses: &stubAddressStore{},
		bus:       &stubBus{},
		reserver:  &stubReserver{},
	}
	svc, err := NewService(f.units, f.quotes, f.placer, f.addresses, f.bus, f.reserver, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func guestQuote() *models.Quote {
	quoteID := uuid.New()
	return &models.Quote{
		ID:              quoteID,
		IsActive:        true,
		CheckoutMethod:  enums.CheckoutMethodGuest,
		CustomerIsGuest: true,
		CustomerEmail:   "buyer@example.com",
		SubtotalCents:   3100,
		GrandTotalCents: 3100,
		Items: []models.QuoteItem{
			{ID: uuid.New(), QuoteID: quoteID, ProductSKU: "SKU-1", Name: "Widget", Qty: 2, UnitPriceCents: 1550, RowTotalCents: 3100},
		},
		Addresses: []models.QuoteAddress{
			{ID: uuid.New(), QuoteID: quoteID, AddressType: enums.AddressTypeBilling, Email: "buyer@example.com", Street: "1 Main St", City: "Springfield"},
			{ID: uuid.New(), QuoteID: quoteID, AddressType: enums.AddressTypeShipping, Street: "1 Main St", City: "Springfield", ShippingMethod: "flatrate_flatrate"},
		},
		Payment: &models.QuotePayment{ID: uuid.New(), Method: "paypal_express"},
	}
}

func TestCreateOrderEmptyQuoteProducesNoOrder(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	quote.Items = nil

	order, err := f.svc.CreateOrder(context.Background(), quote)

	require.NoError(t, err)
	assert.Nil(t, order)
	assert.False(t, quote.IsActive)
	assert.Empty(t, f.units.savedOrders)
	assert.Empty(t, f.quotes.saved)
}

func TestUpdateAndPlaceEmptyQuoteProducesNoOrder(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	parentID := quote.Items[0].ID
	quote.Items = append(quote.Items[:0], models.QuoteItem{ID: uuid.New(), ParentItemID: &parentID})

	order, err := f.svc.UpdateAndPlace(context.Background(), quote, &models.Order{})

	require.NoError(t, err)
	assert.Nil(t, order)
	assert.False(t, quote.IsActive)
	assert.Empty(t, f.placer.placed)
}

func TestCreateOrderBuildsPendingOrder(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()

	order, err := f.svc.CreateOrder(context.Background(), quote)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, enums.OrderStatePendingPayment, order.State)
	assert.Equal(t, quote.ID, order.QuoteID)
	assert.Len(t, order.Items, 1)
	assert.Len(t, order.Addresses, 2)
	assert.NotNil(t, order.BillingAddress())
	assert.NotNil(t, order.ShippingAddress())
	assert.Equal(t, "flatrate_flatrate", order.ShippingMethod)
	assert.Equal(t, "buyer@example.com", order.CustomerEmail)
	assert.Equal(t, int64(3100), order.GrandTotalCents)

	assert.Equal(t, 1, f.reserver.calls)
	assert.Equal(t, quote.ReservedOrderID, order.IncrementID)
	assert.Len(t, f.units.savedOrders, 1)
	assert.Len(t, f.units.savedQuotes, 1)
	assert.Empty(t, f.placer.placed)
}

func TestCreateOrderVirtualQuoteSkipsShipping(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	quote.IsVirtual = true
	quote.Addresses = quote.Addresses[:1]

	order, err := f.svc.CreateOrder(context.Background(), quote)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Len(t, order.Addresses, 1)
	assert.Nil(t, order.ShippingAddress())
	assert.Empty(t, order.ShippingMethod)
}

func TestCreateThenUpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()

	order, err := f.svc.CreateOrder(context.Background(), quote)
	require.NoError(t, err)
	require.NotNil(t, order)

	// simulate the persistence layer having assigned identifiers
	order.ID = uuid.New()
	order.Payment.ID = uuid.New()
	order.Payment.OrderID = order.ID
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	firstIncrement := order.IncrementID
	firstItemID := order.Items[0].ID
	firstBillingID := order.BillingAddress().ID
	firstShippingID := order.ShippingAddress().ID
	firstPaymentID := order.Payment.ID

	placed, err := f.svc.UpdateAndPlace(context.Background(), quote, order)
	require.NoError(t, err)
	require.NotNil(t, placed)

	assert.Equal(t, firstIncrement, placed.IncrementID)
	assert.Equal(t, 1, f.reserver.calls)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, firstItemID, placed.Items[0].ID)
	assert.Equal(t, firstBillingID, placed.BillingAddress().ID)
	assert.Equal(t, firstShippingID, placed.ShippingAddress().ID)
	assert.Equal(t, firstPaymentID, placed.Payment.ID)
}

func TestUpdateAndPlaceDispatchesEventsAndDeactivatesQuote(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()

	order, err := f.svc.CreateOrder(context.Background(), quote)
	require.NoError(t, err)

	placed, err := f.svc.UpdateAndPlace(context.Background(), quote, order)
	require.NoError(t, err)
	require.NotNil(t, placed)

	assert.Equal(t, enums.OrderStateProcessing, placed.State)
	assert.False(t, quote.IsActive)
	assert.Equal(t, []enums.SubmitEvent{
		enums.EventQuoteSubmitBefore,
		enums.EventQuoteSubmitSuccess,
	}, f.bus.eventNames())
	// create saves the quote with the order, placement saves it alone
	assert.Len(t, f.units.savedQuotes, 1)
	assert.Len(t, f.quotes.saved, 1)
}

func TestSubmitPlacesFreshOrder(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()

	placed, err := f.svc.Submit(context.Background(), quote)

	require.NoError(t, err)
	require.NotNil(t, placed)
	assert.Equal(t, enums.OrderStateProcessing, placed.State)
	assert.False(t, quote.IsActive)
	assert.Len(t, f.placer.placed, 1)
}

func TestCreateOrderPersistFailureRunsCompensatingCleanup(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	saveErr := stdErrors.New("insert failed")
	f.units.saveFn = func(context.Context, *models.Order, *models.Quote) error { return saveErr }

	_, err := f.svc.CreateOrder(context.Background(), quote)

	require.ErrorIs(t, err, saveErr)
	// billing and shipping addresses were new this attempt
	assert.Len(t, f.addresses.deleted, 2)
	require.Len(t, f.bus.dispatches, 1)
	failure := f.bus.dispatches[0]
	assert.Equal(t, enums.EventQuoteSubmitFailure, failure.event)
	assert.Contains(t, failure.payload.Error, "insert failed")
}

func TestPlacementFailureCleansUpOnlyPendingAddresses(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()

	order, err := f.svc.CreateOrder(context.Background(), quote)
	require.NoError(t, err)
	// addresses persisted by the first pass
	for i := range order.Addresses {
		order.Addresses[i].OrderID = order.ID
	}

	placeErr := stdErrors.New("authorize declined")
	f.placer.placeFn = func(context.Context, *models.Order) (*models.Order, error) { return nil, placeErr }

	_, err = f.svc.UpdateAndPlace(context.Background(), quote, order)

	require.ErrorIs(t, err, placeErr)
	assert.Empty(t, f.addresses.deleted)
	assert.Equal(t, enums.EventQuoteSubmitFailure, f.bus.dispatches[len(f.bus.dispatches)-1].event)
}

func TestSuccessEventFailureIsCompensated(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	dispatchErr := stdErrors.New("listener blew up")
	f.bus.dispatchFn = func(_ context.Context, event enums.SubmitEvent, _ events.Payload) error {
		if event == enums.EventQuoteSubmitSuccess {
			return dispatchErr
		}
		return nil
	}

	_, err := f.svc.Submit(context.Background(), quote)

	require.ErrorIs(t, err, dispatchErr)
	assert.Len(t, f.addresses.deleted, 2)
}

func TestSecondaryFailureKeepsOriginalDiscoverable(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	placeErr := stdErrors.New("authorize declined")
	dispatchErr := stdErrors.New("failure listener down")
	f.placer.placeFn = func(context.Context, *models.Order) (*models.Order, error) { return nil, placeErr }
	f.bus.dispatchFn = func(_ context.Context, event enums.SubmitEvent, _ events.Payload) error {
		if event == enums.EventQuoteSubmitFailure {
			return dispatchErr
		}
		return nil
	}

	_, err := f.svc.Submit(context.Background(), quote)

	require.Error(t, err)
	assert.ErrorIs(t, err, placeErr)
	assert.ErrorIs(t, err, dispatchErr)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.CodeOf(err))
}

func TestIncrementIDNeverReservedTwiceForSameOrder(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()

	order, err := f.svc.CreateOrder(context.Background(), quote)
	require.NoError(t, err)
	require.Equal(t, 1, f.reserver.calls)

	_, err = f.svc.UpdateAndPlace(context.Background(), quote, order)
	require.NoError(t, err)
	assert.Equal(t, 1, f.reserver.calls)
}

func TestDriftedReservationReservesFreshForQuoteOnly(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	quote.ReservedOrderID = "100000099"
	order := &models.Order{IncrementID: "100000001"}

	_, err := f.svc.UpdateAndPlace(context.Background(), quote, order)

	require.NoError(t, err)
	assert.Equal(t, "100000001", order.IncrementID)
	assert.Equal(t, 1, f.reserver.calls)
	assert.Equal(t, "900000001", quote.ReservedOrderID)
}

func TestPreReservedQuoteIsNotReservedAgain(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	quote.ReservedOrderID = "100000055"

	order, err := f.svc.CreateOrder(context.Background(), quote)

	require.NoError(t, err)
	assert.Equal(t, "100000055", order.IncrementID)
	assert.Zero(t, f.reserver.calls)
}

func TestRecreateAfterCancelReservesFreshReference(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()

	first, err := f.svc.CreateOrder(context.Background(), quote)
	require.NoError(t, err)
	require.Equal(t, "900000001", first.IncrementID)

	// the first order was canceled but keeps its reference
	f.reserver.used = map[string]bool{first.IncrementID: true}

	second, err := f.svc.CreateOrder(context.Background(), quote)

	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "900000002", second.IncrementID)
	assert.Equal(t, "900000002", quote.ReservedOrderID)
	assert.Len(t, f.units.savedOrders, 2)
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(q *models.Quote)
	}{
		{"missing payment", func(q *models.Quote) { q.Payment = nil }},
		{"missing billing address", func(q *models.Quote) { q.Addresses = q.Addresses[1:] }},
		{"missing shipping address", func(q *models.Quote) { q.Addresses = q.Addresses[:1] }},
		{"missing email", func(q *models.Quote) { q.CustomerEmail = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			quote := guestQuote()
			quote.CheckoutMethod = enums.CheckoutMethodCustomer
			tc.mutate(quote)

			_, err := f.svc.CreateOrder(context.Background(), quote)

			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
		})
	}
}

func TestCustomerFieldsCopied(t *testing.T) {
	f := newFixture(t)
	quote := guestQuote()
	customerID := uuid.New()
	quote.CheckoutMethod = enums.CheckoutMethodCustomer
	quote.CustomerIsGuest = false
	quote.CustomerID = &customerID
	quote.CustomerFirstname = "Ada"
	quote.CustomerMiddlename = "B"
	quote.CustomerLastname = "Lovelace"

	order, err := f.svc.CreateOrder(context.Background(), quote)

	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, customerID, *order.CustomerID)
	assert.Equal(t, "Ada", order.CustomerFirstname)
	assert.Equal(t, "B", order.CustomerMiddlename)
	assert.Equal(t, "Lovelace", order.CustomerLastname)
}
