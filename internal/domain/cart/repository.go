package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for cart persistence
type Repository interface {
	// FindByID finds a cart by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)

	// FindByOwner finds the cart belonging to the given owner
	FindByOwner(ctx context.Context, owner Owner) (*Cart, error)

	// Save creates or updates a cart
	Save(ctx context.Context, cart *Cart) error

	// Delete deletes a cart
	Delete(ctx context.Context, id uuid.UUID) error
}
