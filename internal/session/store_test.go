package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/opentechiz/express-checkout/pkg/redis"
)

type fakeKV struct {
	values map[string]string
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	val, ok := f.values[key]
	if !ok {
		return "", redisclient.ErrNotFound
	}
	return val, nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeKV) SessionKey(sessionID string) string {
	return "test:" + sessionID
}

func newTestStore() (*redisStore, *fakeKV) {
	kv := &fakeKV{}
	return &redisStore{kv: kv, ttl: time.Minute}, kv
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	quoteID := uuid.New()
	orderID := uuid.New()
	state := &State{QuoteID: &quoteID}
	state.RecordOrder(quoteID, orderID, "100000042")

	require.NoError(t, store.Save(ctx, "sess-1", state))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.LastOrderID)
	assert.Equal(t, orderID, *loaded.LastOrderID)
	assert.Equal(t, quoteID, *loaded.LastQuoteID)
	assert.Equal(t, "100000042", loaded.LastRealOrderID)
}

func TestLoadMissingSessionReturnsZeroState(t *testing.T) {
	store, _ := newTestStore()

	state, err := store.Load(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, &State{}, state)
}

func TestClearRemovesState(t *testing.T) {
	store, kv := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", &State{LastRealOrderID: "100000001"}))
	require.NoError(t, store.Clear(ctx, "sess-1"))
	assert.Empty(t, kv.values)
}

func TestClearOrderRefsKeepsCurrentQuote(t *testing.T) {
	quoteID := uuid.New()
	orderID := uuid.New()
	state := &State{QuoteID: &quoteID}
	state.RecordOrder(quoteID, orderID, "100000007")
	state.LastSuccessQuoteID = &quoteID

	state.ClearOrderRefs()

	assert.NotNil(t, state.QuoteID)
	assert.Nil(t, state.LastQuoteID)
	assert.Nil(t, state.LastSuccessQuoteID)
	assert.Nil(t, state.LastOrderID)
	assert.Empty(t, state.LastRealOrderID)
}

func TestRestartMovesQuoteToSuccessPointer(t *testing.T) {
	quoteID := uuid.New()
	state := &State{QuoteID: &quoteID}

	state.Restart()

	assert.Nil(t, state.QuoteID)
	require.NotNil(t, state.LastSuccessQuoteID)
	assert.Equal(t, quoteID, *state.LastSuccessQuoteID)
}
