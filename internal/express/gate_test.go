package express

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentechiz/express-checkout/internal/events"
	"github.com/opentechiz/express-checkout/internal/session"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
)

type stubProvider struct {
	token string
	err   error
}

func (s *stubProvider) AcquireToken(context.Context) (string, error) {
	return s.token, s.err
}

type stubCanceller struct {
	order    *models.Order
	canceled []*models.Order
	cancelFn func(ctx context.Context, order *models.Order) error
}

func (s *stubCanceller) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s *stubCanceller) Cancel(ctx context.Context, order *models.Order) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, order)
	}
	s.canceled = append(s.canceled, order)
	return nil
}

type stubGateBus struct {
	events     []enums.SubmitEvent
	payloads   []events.Payload
	dispatchFn func(ctx context.Context, event enums.SubmitEvent, payload events.Payload) error
}

func (s *stubGateBus) Dispatch(ctx context.Context, event enums.SubmitEvent, payload events.Payload) error {
	if s.dispatchFn != nil {
		return s.dispatchFn(ctx, event, payload)
	}
	s.events = append(s.events, event)
	s.payloads = append(s.payloads, payload)
	return nil
}

type stubCheckout struct {
	allow       bool
	createCalls int
	createFn    func(ctx context.Context, sess *session.State, shippingMethod string) (*models.Order, error)
}

func (s *stubCheckout) CreateOrder(ctx context.Context, sess *session.State, shippingMethod string) (*models.Order, error) {
	s.createCalls++
	if s.createFn != nil {
		return s.createFn(ctx, sess, shippingMethod)
	}
	return &models.Order{ID: uuid.New(), State: enums.OrderStatePendingPayment}, nil
}

func (s *stubCheckout) Place(context.Context, *session.State, string, string) (*PlaceResult, error) {
	return nil, nil
}

func (s *stubCheckout) AllowCreateOrderBeforePay() bool { return s.allow }

type gateFixture struct {
	gate     *TokenGate
	provider *stubProvider
	orders   *stubCanceller
	checkout *stubCheckout
	bus      *stubGateBus
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	f := &gateFixture{
		provider: &stubProvider{token: "EC-123"},
		orders:   &stubCanceller{},
		checkout: &stubCheckout{allow: true},
		bus:      &stubGateBus{},
	}
	gate, err := NewTokenGate(f.provider, f.orders, f.checkout, f.bus, nil, nil)
	require.NoError(t, err)
	f.gate = gate
	return f
}

func TestAcquireTokenCreatesPendingOrder(t *testing.T) {
	f := newGateFixture(t)
	quoteID := uuid.New()
	sess := &session.State{QuoteID: &quoteID}

	token, err := f.gate.AcquireToken(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, "EC-123", token)
	assert.Equal(t, 1, f.checkout.createCalls)
	assert.Empty(t, f.orders.canceled)
	assert.Empty(t, f.bus.events)
}

func TestAcquireTokenCancelsStaleOrderFirst(t *testing.T) {
	f := newGateFixture(t)
	quoteID := uuid.New()
	stale := &models.Order{ID: uuid.New(), QuoteID: quoteID, State: enums.OrderStatePendingPayment}
	f.orders.order = stale

	sess := &session.State{QuoteID: &quoteID}
	sess.RecordOrder(quoteID, stale.ID, "900000001")

	token, err := f.gate.AcquireToken(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, "EC-123", token)
	require.Len(t, f.orders.canceled, 1)
	assert.Equal(t, stale.ID, f.orders.canceled[0].ID)
	// the abandoned attempt's pointers are gone before the new order lands
	assert.Nil(t, sess.LastQuoteID)
	assert.Nil(t, sess.LastSuccessQuoteID)
	assert.Empty(t, sess.LastRealOrderID)
	assert.Equal(t, 1, f.checkout.createCalls)

	require.Equal(t, []enums.SubmitEvent{enums.EventOrderCanceled}, f.bus.events)
	assert.Equal(t, stale.ID, f.bus.payloads[0].OrderID)
	assert.Equal(t, quoteID, f.bus.payloads[0].QuoteID)
}

func TestAcquireTokenPropagatesCancelEventError(t *testing.T) {
	f := newGateFixture(t)
	quoteID := uuid.New()
	stale := &models.Order{ID: uuid.New(), QuoteID: quoteID, State: enums.OrderStatePendingPayment}
	f.orders.order = stale
	dispatchErr := stdErrors.New("outbox down")
	f.bus.dispatchFn = func(context.Context, enums.SubmitEvent, events.Payload) error { return dispatchErr }

	sess := &session.State{QuoteID: &quoteID}
	sess.RecordOrder(quoteID, stale.ID, "900000001")

	_, err := f.gate.AcquireToken(context.Background(), sess)

	require.ErrorIs(t, err, dispatchErr)
	assert.Zero(t, f.checkout.createCalls)
}

func TestAcquireTokenLeavesOtherQuotesOrderAlone(t *testing.T) {
	f := newGateFixture(t)
	quoteID := uuid.New()
	other := &models.Order{ID: uuid.New(), QuoteID: uuid.New(), State: enums.OrderStatePendingPayment}
	f.orders.order = other

	sess := &session.State{QuoteID: &quoteID}
	sess.RecordOrder(other.QuoteID, other.ID, "900000002")

	_, err := f.gate.AcquireToken(context.Background(), sess)

	require.NoError(t, err)
	assert.Empty(t, f.orders.canceled)
	require.NotNil(t, sess.LastOrderID)
	assert.Equal(t, other.ID, *sess.LastOrderID)
}

func TestAcquireTokenToleratesVanishedOrder(t *testing.T) {
	f := newGateFixture(t)
	quoteID := uuid.New()
	sess := &session.State{QuoteID: &quoteID}
	goneID := uuid.New()
	sess.LastOrderID = &goneID

	token, err := f.gate.AcquireToken(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, "EC-123", token)
	assert.Equal(t, 1, f.checkout.createCalls)
}

func TestAcquireTokenSkipsCreationWhenDisabled(t *testing.T) {
	f := newGateFixture(t)
	f.checkout.allow = false
	quoteID := uuid.New()
	sess := &session.State{QuoteID: &quoteID}

	token, err := f.gate.AcquireToken(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, "EC-123", token)
	assert.Zero(t, f.checkout.createCalls)
}

func TestAcquireTokenSkipsCreationOnEmptyToken(t *testing.T) {
	f := newGateFixture(t)
	f.provider.token = ""

	token, err := f.gate.AcquireToken(context.Background(), &session.State{})

	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Zero(t, f.checkout.createCalls)
}

func TestAcquireTokenPropagatesProviderError(t *testing.T) {
	f := newGateFixture(t)
	f.provider.err = stdErrors.New("gateway timeout")

	_, err := f.gate.AcquireToken(context.Background(), &session.State{})

	require.Error(t, err)
	assert.Zero(t, f.checkout.createCalls)
}

func TestAcquireTokenPropagatesCancelError(t *testing.T) {
	f := newGateFixture(t)
	quoteID := uuid.New()
	stale := &models.Order{ID: uuid.New(), QuoteID: quoteID, State: enums.OrderStatePendingPayment}
	f.orders.order = stale
	cancelErr := stdErrors.New("cancel rejected")
	f.orders.cancelFn = func(context.Context, *models.Order) error { return cancelErr }

	sess := &session.State{QuoteID: &quoteID}
	sess.RecordOrder(quoteID, stale.ID, "900000001")

	_, err := f.gate.AcquireToken(context.Background(), sess)

	require.ErrorIs(t, err, cancelErr)
	assert.Zero(t, f.checkout.createCalls)
	// pointers survive a failed cleanup so the next attempt retries it
	require.NotNil(t, sess.LastOrderID)
}
