package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

// ActivityLogHandler writes every published domain event to the structured
// log. It subscribes to all event types and is the bus's catch-all consumer.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger}
}

// Handle logs the event with its identifying fields
func (h *ActivityLogHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", ev.EventType()),
		zap.String("event_id", ev.EventID().String()),
		zap.String("aggregate_type", ev.AggregateType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
		zap.Time("occurred_at", ev.OccurredAt()))
	return nil
}

// EventTypes returns an empty slice so the handler receives all events
func (h *ActivityLogHandler) EventTypes() []string {
	return nil
}
