package cart

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Owner identifies who a cart belongs to: exactly one of an authenticated
// customer or an anonymous guest session. Ownership is always passed
// explicitly; nothing resolves it from ambient state.
type Owner struct {
	CustomerID *uuid.UUID
	SessionID  string
}

// CustomerOwner returns an Owner for an authenticated customer
func CustomerOwner(customerID uuid.UUID) Owner {
	return Owner{CustomerID: &customerID}
}

// GuestOwner returns an Owner for an anonymous session
func GuestOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// Validate checks that exactly one identity is set
func (o Owner) Validate() error {
	if o.CustomerID != nil && o.SessionID != "" {
		return shared.NewDomainError("INVALID_OWNER", "Cart owner cannot be both a customer and a guest session")
	}
	if o.CustomerID == nil && o.SessionID == "" {
		return shared.NewDomainError("INVALID_OWNER", "Cart owner must be a customer or a guest session")
	}
	return nil
}

// IsGuest returns true for session-owned carts
func (o Owner) IsGuest() bool {
	return o.CustomerID == nil
}

// String renders the owner for audit entries
func (o Owner) String() string {
	if o.CustomerID != nil {
		return "customer:" + o.CustomerID.String()
	}
	return "guest:" + o.SessionID
}
