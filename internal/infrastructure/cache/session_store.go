package cache

import (
	"context"
	"time"
)

// GuestSessionStore issues and validates anonymous storefront sessions.
// A guest session owns a cart until the customer logs in and the carts
// merge; after that the session is revoked.
type GuestSessionStore interface {
	// Issue creates a new session and returns its ID
	Issue(ctx context.Context) (string, error)

	// Validate reports whether the session exists and has not expired.
	// A successful validation slides the expiry forward.
	Validate(ctx context.Context, sessionID string) (bool, error)

	// Revoke deletes a session. Revoking an unknown session is a no-op.
	Revoke(ctx context.Context, sessionID string) error

	// Close releases store resources
	Close() error
}

// DefaultSessionTTL applies when a store is built with a non-positive TTL
const DefaultSessionTTL = 7 * 24 * time.Hour
