package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
)

// Service manages on-hand stock records for the admin surface and answers
// storefront availability probes. Reservations during checkout never go
// through this service; they use the ledger's conditional writes directly.
type Service struct {
	repo   inventory.Repository
	audit  shared.AuditRecorder
	logger *zap.Logger
}

// NewService creates a new inventory service
func NewService(repo inventory.Repository, audit shared.AuditRecorder, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  audit,
		logger: logger,
	}
}

// GetByProduct returns the stock records for a product across its variants
func (s *Service) GetByProduct(ctx context.Context, productID uuid.UUID) ([]RecordResponse, error) {
	records, err := s.repo.FindAllByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]RecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, *ToRecordResponse(&records[i]))
	}
	return responses, nil
}

// SetStock creates or overwrites the record for a product/variant at an
// absolute quantity. Used for initial stocking and stocktake corrections.
func (s *Service) SetStock(ctx context.Context, req SetStockRequest) (*RecordResponse, error) {
	record, err := s.repo.FindByProduct(ctx, req.ProductID, req.VariantID)
	switch {
	case err == nil:
		delta := req.Quantity - record.Quantity
		if delta != 0 {
			if err := s.repo.AdjustQuantity(ctx, req.ProductID, req.VariantID, delta); err != nil {
				return nil, err
			}
			record.Quantity = req.Quantity
		}
	case errors.Is(err, shared.ErrNotFound):
		record, err = inventory.NewRecord(req.ProductID, req.VariantID, req.Quantity, true)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, record); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.audit.Record(ctx, "inventory.stock_set", "admin", "product:"+req.ProductID.String(),
		map[string]interface{}{"quantity": req.Quantity, "reason": req.Reason})

	return ToRecordResponse(record), nil
}

// Adjust applies a signed delta to a record's quantity. The write is
// conditional so an adjustment racing a reservation cannot drive the
// quantity negative.
func (s *Service) Adjust(ctx context.Context, req AdjustStockRequest) (*RecordResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}

	if err := s.repo.AdjustQuantity(ctx, req.ProductID, req.VariantID, req.Delta); err != nil {
		if errors.Is(err, shared.ErrOutOfStock) {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				"Adjustment would drive stock below zero")
		}
		return nil, err
	}

	record, err := s.repo.FindByProduct(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "inventory.adjusted", "admin", "product:"+req.ProductID.String(),
		map[string]interface{}{"delta": req.Delta, "reason": req.Reason})

	return ToRecordResponse(record), nil
}

// SetTracking toggles whether the record participates in availability checks
// and reservations. Untracked records always report available.
func (s *Service) SetTracking(ctx context.Context, req SetTrackingRequest) (*RecordResponse, error) {
	record, err := s.repo.FindByProduct(ctx, req.ProductID, req.VariantID)
	if errors.Is(err, shared.ErrNotFound) {
		record, err = inventory.NewRecord(req.ProductID, req.VariantID, 0, *req.Tracked)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, record); err != nil {
			return nil, err
		}
		return ToRecordResponse(record), nil
	}
	if err != nil {
		return nil, err
	}

	record.SetTracked(*req.Tracked)
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "inventory.tracking_changed", "admin", "product:"+req.ProductID.String(),
		map[string]interface{}{"tracked": *req.Tracked})

	return ToRecordResponse(record), nil
}

// CheckAvailability reports whether the requested quantity could currently
// be reserved. Advisory only; the reservation re-checks atomically.
func (s *Service) CheckAvailability(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int64) (*AvailabilityResponse, error) {
	if err := inventory.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByProduct(ctx, productID, variantID)
	if errors.Is(err, shared.ErrNotFound) {
		// No record means the product was never stocked under tracking
		return &AvailabilityResponse{
			ProductID: productID,
			VariantID: variantID,
			Available: true,
			Tracked:   false,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &AvailabilityResponse{
		ProductID: productID,
		VariantID: variantID,
		Available: record.IsAvailable(quantity),
		Quantity:  record.Quantity,
		Tracked:   record.Tracked,
	}, nil
}
