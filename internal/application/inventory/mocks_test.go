package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/storefront/backend/internal/domain/inventory"
)

type MockRepository struct {
	mock.Mock
}

var _ inventory.Repository = (*MockRepository)(nil)

func (m *MockRepository) Reserve(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int64) error {
	args := m.Called(ctx, productID, variantID, quantity)
	return args.Error(0)
}

func (m *MockRepository) Release(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int64) error {
	args := m.Called(ctx, productID, variantID, quantity)
	return args.Error(0)
}

func (m *MockRepository) FindByProduct(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*inventory.Record, error) {
	args := m.Called(ctx, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Record), args.Error(1)
}

func (m *MockRepository) FindAllByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Record, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Record), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Record), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, record *inventory.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) AdjustQuantity(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, delta int64) error {
	args := m.Called(ctx, productID, variantID, delta)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, action, actor, subject string, details map[string]interface{}) {
}
