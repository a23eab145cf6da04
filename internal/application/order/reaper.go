package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// ReservationReaper cancels hosted-gateway orders whose payment window has
// expired and returns their reserved stock. COD orders never expire; their
// payment is collected on delivery.
type ReservationReaper struct {
	orderRepo order.Repository
	ledger    inventory.Ledger
	ttl       time.Duration
	batchSize int
	interval  time.Duration
	audit     shared.AuditRecorder
	logger    *zap.Logger
}

// NewReservationReaper creates a new ReservationReaper
func NewReservationReaper(
	orderRepo order.Repository,
	ledger inventory.Ledger,
	ttl time.Duration,
	interval time.Duration,
	batchSize int,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *ReservationReaper {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ReservationReaper{
		orderRepo: orderRepo,
		ledger:    ledger,
		ttl:       ttl,
		batchSize: batchSize,
		interval:  interval,
		audit:     audit,
		logger:    logger,
	}
}

// ReapStats contains statistics about one expiration sweep
type ReapStats struct {
	Found       int       `json:"found"`
	Cancelled   int       `json:"cancelled"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// ReapExpired cancels all orders past the payment window and releases
// their stock
func (r *ReservationReaper) ReapExpired(ctx context.Context) (*ReapStats, error) {
	stats := &ReapStats{ProcessedAt: time.Now()}
	cutoff := time.Now().Add(-r.ttl)

	expired, err := r.orderRepo.FindAwaitingPaymentBefore(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("failed to find expired orders", zap.Error(err))
		return nil, err
	}

	stats.Found = len(expired)
	if stats.Found == 0 {
		return stats, nil
	}

	r.logger.Info("found orders past the payment window",
		zap.Int("count", stats.Found))

	for i := range expired {
		if err := r.reapOrder(ctx, &expired[i]); err != nil {
			r.logger.Error("failed to cancel expired order",
				zap.String("order_id", expired[i].ID.String()),
				zap.String("order_number", expired[i].OrderNumber),
				zap.Error(err))
			stats.Failed++
			continue
		}
		stats.Cancelled++
	}

	r.logger.Info("completed expiration sweep",
		zap.Int("found", stats.Found),
		zap.Int("cancelled", stats.Cancelled),
		zap.Int("failed", stats.Failed))

	return stats, nil
}

// reapOrder cancels a single expired order and returns its stock. A
// concurrency conflict means another writer touched the order between the
// query and the save, most likely a verify that just settled it; the order
// is skipped without error and picked up again next sweep if still unpaid.
func (r *ReservationReaper) reapOrder(ctx context.Context, o *order.Order) error {
	if err := o.Cancel("payment window expired"); err != nil {
		return err
	}
	if err := r.orderRepo.SaveWithLock(ctx, o); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			r.logger.Debug("skipping expired order touched by another writer",
				zap.String("order_id", o.ID.String()))
			return nil
		}
		return err
	}

	for _, item := range o.Items {
		if err := r.ledger.Release(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
			r.logger.Error("failed to release stock for expired order",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}

	r.audit.Record(ctx, "order.expired", "system", "order:"+o.ID.String(), map[string]interface{}{
		"order_number": o.OrderNumber,
	})

	return nil
}

// Run sweeps on the configured interval until the context is cancelled
func (r *ReservationReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reservation reaper started",
		zap.Duration("ttl", r.ttl),
		zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reservation reaper stopped")
			return
		case <-ticker.C:
			if _, err := r.ReapExpired(ctx); err != nil {
				r.logger.Error("expiration sweep failed", zap.Error(err))
			}
		}
	}
}
