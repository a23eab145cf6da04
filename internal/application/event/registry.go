package event

import (
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

// RegisterHandlers subscribes the application's event handlers on the bus.
// Called once during server wiring, before the bus starts.
func RegisterHandlers(bus shared.EventBus, logger *zap.Logger) {
	bus.Subscribe(NewActivityLogHandler(logger))
}
