package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// CODGateway serves cash-on-delivery orders. There is no provider behind
// it; intents get a synthetic reference and no network round trip.
type CODGateway struct{}

// NewCODGateway creates a new CODGateway
func NewCODGateway() *CODGateway {
	return &CODGateway{}
}

// Method returns the payment method this gateway serves
func (g *CODGateway) Method() payment.Method {
	return payment.MethodCOD
}

// CreateIntent returns a synthetic reference without I/O
func (g *CODGateway) CreateIntent(_ context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &payment.Intent{
		GatewayOrderRef: fmt.Sprintf("cod_%s", uuid.New().String()),
		Amount:          req.Amount,
		Currency:        req.Currency,
		ClientData: map[string]string{
			"method":       payment.MethodCOD.String(),
			"order_number": req.OrderNumber,
		},
	}, nil
}

// Verify always fails: cash payments are recorded by an administrator at
// delivery, never through the verify callback.
func (g *CODGateway) Verify(_ context.Context, _ payment.VerifyRequest) (*payment.VerifiedPayment, error) {
	return nil, shared.NewDomainError("UNSUPPORTED_METHOD", "Cash on delivery payments cannot be verified online")
}
