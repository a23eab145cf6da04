package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Gateway errors
var (
	ErrUnsupportedMethod  = shared.NewDomainError("UNSUPPORTED_METHOD", "Payment method is not supported")
	ErrInvalidAmount      = shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	ErrInvalidSignature   = shared.ErrInvalidSignature
	ErrGatewayUnavailable = shared.ErrGatewayUnavailable
)

// CreateIntentRequest asks a gateway to open a payment session for an order
type CreateIntentRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      int64 // Minor units
	Currency    string
	CustomerID  uuid.UUID
	Email       string
	Phone       string
}

// Validate checks the request fields
func (r CreateIntentRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(r.Currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a three-letter code")
	}
	return nil
}

// Intent is the gateway-side payment session returned by CreateIntent.
// ClientData carries whatever the storefront needs to render the provider's
// payment UI (provider key, session id, prefill fields).
type Intent struct {
	GatewayOrderRef string
	Amount          int64
	Currency        string
	ClientData      map[string]string
}

// VerifyRequest carries the client-reported proof of payment
type VerifyRequest struct {
	GatewayOrderRef   string
	GatewayPaymentRef string
	Signature         string
}

// Validate checks the verify request fields
func (r VerifyRequest) Validate() error {
	if r.GatewayOrderRef == "" {
		return shared.NewDomainError("INVALID_CALLBACK", "Gateway order reference cannot be empty")
	}
	if r.GatewayPaymentRef == "" {
		return shared.NewDomainError("INVALID_CALLBACK", "Gateway payment reference cannot be empty")
	}
	return nil
}

// VerifiedPayment is the authenticated result of a verify call
type VerifiedPayment struct {
	GatewayOrderRef   string
	GatewayPaymentRef string
	TransactionID     string
}

// Gateway is the port to a payment provider. Implementations must keep
// both calls bounded by the request context; neither call may hold locks
// or half-applied state across the network round trip.
type Gateway interface {
	// Method returns the payment method this gateway serves
	Method() Method

	// CreateIntent opens a provider-side payment session for the amount.
	// COD-style providers return a synthetic reference without I/O.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)

	// Verify authenticates a client-reported payment against the shared
	// secret. It must return ErrInvalidSignature on any mismatch and must
	// be safe to call repeatedly with the same proof.
	Verify(ctx context.Context, req VerifyRequest) (*VerifiedPayment, error)
}
