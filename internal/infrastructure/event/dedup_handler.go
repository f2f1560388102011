package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultDedupTTL is how long a delivered event id is remembered
const DefaultDedupTTL = 24 * time.Hour

// DedupStats is a snapshot of DedupHandler counters
type DedupStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// DedupHandler wraps a handler so each event id is handled at most once
// within the TTL, even when delivered more than once.
type DedupHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// NewDedupHandler creates a new DedupHandler. A zero ttl uses DefaultDedupTTL.
func NewDedupHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *DedupHandler {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupHandler{handler: handler, store: store, ttl: ttl, logger: logger}
}

// EventTypes returns the wrapped handler's event types
func (h *DedupHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle forwards the event unless its id was already seen. A store
// failure does not drop the event.
func (h *DedupHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := "event:" + event.EventID().String()

	fresh, err := h.store.Reserve(ctx, key, h.ttl)
	if err != nil {
		h.logger.Warn("event dedup check failed, handling anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	} else if !fresh {
		h.duplicate.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()))
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns the current counters
func (h *DedupHandler) Stats() DedupStats {
	return DedupStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*DedupHandler)(nil)
