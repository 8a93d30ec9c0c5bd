package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	redisclient "github.com/opentechiz/express-checkout/pkg/redis"
)

// Store persists checkout session state between requests.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Clear(ctx context.Context, sessionID string) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

type redisStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewStore builds a Redis-backed session store.
func NewStore(client *redisclient.Client, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &redisStore{kv: client, ttl: ttl}, nil
}

// Load returns the stored state, or a fresh zero state when none exists.
func (s *redisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	raw, err := s.kv.Get(ctx, s.kv.SessionKey(sessionID))
	if errors.Is(err, redisclient.ErrNotFound) {
		return &State{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session")
	}
	return &state, nil
}

func (s *redisStore) Save(ctx context.Context, sessionID string, state *State) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	if err := s.kv.Set(ctx, s.kv.SessionKey(sessionID), raw, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.kv.Del(ctx, s.kv.SessionKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear checkout session")
	}
	return nil
}
