package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormInventoryRepository implements inventory.Repository using GORM.
// Reserve, Release, and AdjustQuantity are single conditional UPDATE
// statements; the availability check and the decrement are one atomic
// write, so concurrent reservations can never oversell.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// Reserve decrements stock for the product/variant. Returns
// shared.ErrOutOfStock when stock is insufficient. Untracked and
// unrecorded products succeed trivially.
func (r *GormInventoryRepository) Reserve(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int64) error {
	if err := inventory.ValidateQuantity(quantity); err != nil {
		return err
	}

	result := r.variantScope(ctx, productID, variantID).
		Where("tracked = ? AND quantity >= ?", true, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// No row updated: either the record is missing or untracked (both
	// succeed trivially) or stock really is short.
	record, err := r.FindByProduct(ctx, productID, variantID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !record.Tracked {
		return nil
	}
	return shared.ErrOutOfStock
}

// Release restores stock previously taken by Reserve
func (r *GormInventoryRepository) Release(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int64) error {
	if err := inventory.ValidateQuantity(quantity); err != nil {
		return err
	}

	result := r.variantScope(ctx, productID, variantID).
		Where("tracked = ?", true).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	return result.Error
}

// AdjustQuantity applies a signed administrative adjustment, failing with
// shared.ErrOutOfStock if it would drive the quantity negative
func (r *GormInventoryRepository) AdjustQuantity(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, delta int64) error {
	query := r.variantScope(ctx, productID, variantID)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	}

	result := query.UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByProduct(ctx, productID, variantID); err != nil {
			return err
		}
		return shared.ErrOutOfStock
	}
	return nil
}

// FindByProduct finds the record for a product/variant pair
func (r *GormInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*inventory.Record, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if variantID != nil {
		query = query.Where("variant_id = ?", *variantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}

	var record inventory.Record
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAllByProduct finds all records for a product across its variants
func (r *GormInventoryRepository) FindAllByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Record, error) {
	var records []inventory.Record
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID finds a record by its ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Record, error) {
	var record inventory.Record
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save creates or updates a record
func (r *GormInventoryRepository) Save(ctx context.Context, record *inventory.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete deletes a record
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.Record{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormInventoryRepository) variantScope(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&inventory.Record{}).
		Where("product_id = ?", productID)
	if variantID != nil {
		return query.Where("variant_id = ?", *variantID)
	}
	return query.Where("variant_id IS NULL")
}
