package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (s *memoryStore) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }

func TestDedupHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("redelivered events are handled once", func(t *testing.T) {
		inner := newTestHandler("TransferExecuted")
		h := NewDedupHandler(inner, &memoryStore{keys: map[string]bool{}}, 0, zap.NewNop())
		event := newTestEvent("TransferExecuted")

		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, newTestEvent("TransferExecuted")))

		assert.Equal(t, 2, inner.count())
		assert.Equal(t, DedupStats{Processed: 2, Duplicate: 1}, h.Stats())
		assert.Equal(t, []string{"TransferExecuted"}, h.EventTypes())
	})

	t.Run("store failure still handles", func(t *testing.T) {
		inner := newTestHandler()
		h := NewDedupHandler(inner, &memoryStore{err: errors.New("redis down")}, time.Minute, zap.NewNop())
		require.NoError(t, h.Handle(ctx, newTestEvent("X")))
		assert.Equal(t, 1, inner.count())
	})

	t.Run("handler failure is counted and returned", func(t *testing.T) {
		inner := newTestHandler()
		inner.err = errors.New("sink down")
		h := NewDedupHandler(inner, &memoryStore{keys: map[string]bool{}}, time.Minute, zap.NewNop())
		assert.Error(t, h.Handle(ctx, newTestEvent("X")))
		assert.Equal(t, int64(1), h.Stats().Failed)
	})
}
