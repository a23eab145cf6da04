package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

func newPaymentFixture() (*PaymentService, *MockOrderRepository, *MockCartRepository, *MockGateway, *recordingAudit) {
	orderRepo := new(MockOrderRepository)
	cartRepo := new(MockCartRepository)
	gateway := &MockGateway{method: payment.MethodRazorpay}
	audit := new(recordingAudit)
	svc := NewPaymentService(orderRepo, cartRepo, staticRegistry{gateway}, audit, zap.NewNop())
	return svc, orderRepo, cartRepo, gateway, audit
}

func hostedOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()
	o := testOrder(t, customerID, payment.MethodRazorpay)
	o.Payment.GatewayOrderRef = "order_rzp_1"
	return o
}

func TestVerifyMarksOrderPaid(t *testing.T) {
	svc, orderRepo, cartRepo, gateway, audit := newPaymentFixture()
	customerID := uuid.New()
	o := hostedOrder(t, customerID)

	c, err := cart.NewCart(cart.CustomerOwner(customerID))
	require.NoError(t, err)

	orderRepo.On("FindByGatewayOrderRef", mock.Anything, "order_rzp_1").Return(o, nil)
	gateway.On("Verify", mock.Anything, payment.VerifyRequest{
		GatewayOrderRef:   "order_rzp_1",
		GatewayPaymentRef: "pay_1",
		Signature:         "sig",
	}).Return(&payment.VerifiedPayment{
		GatewayOrderRef:   "order_rzp_1",
		GatewayPaymentRef: "pay_1",
		TransactionID:     "txn_1",
	}, nil)
	orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)
	cartRepo.On("FindByOwner", mock.Anything, cart.CustomerOwner(customerID)).Return(c, nil)
	cartRepo.On("Save", mock.Anything, c).Return(nil)

	verified, err := svc.Verify(context.Background(), VerifyPaymentRequest{
		GatewayOrderRef:   "order_rzp_1",
		GatewayPaymentRef: "pay_1",
		Signature:         "sig",
	})
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStatusCompleted, verified.Payment.Status)
	assert.Equal(t, order.StatusProcessing, verified.Status)
	assert.Equal(t, "pay_1", verified.Payment.GatewayPaymentRef)
	assert.True(t, audit.has("payment.verified"))
	cartRepo.AssertCalled(t, "Save", mock.Anything, c)
}

func TestVerifyIdempotent(t *testing.T) {
	svc, orderRepo, _, gateway, _ := newPaymentFixture()
	o := hostedOrder(t, uuid.New())
	require.NoError(t, o.MarkPaid("pay_1", "txn_1"))

	orderRepo.On("FindByGatewayOrderRef", mock.Anything, "order_rzp_1").Return(o, nil)
	gateway.On("Verify", mock.Anything, mock.Anything).Return(&payment.VerifiedPayment{
		GatewayOrderRef:   "order_rzp_1",
		GatewayPaymentRef: "pay_1",
		TransactionID:     "txn_1",
	}, nil)

	verified, err := svc.Verify(context.Background(), VerifyPaymentRequest{
		GatewayOrderRef:   "order_rzp_1",
		GatewayPaymentRef: "pay_1",
		Signature:         "sig",
	})
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStatusCompleted, verified.Payment.Status)
	// The duplicate is authenticated but settles nothing a second time
	gateway.AssertCalled(t, "Verify", mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestVerifyReplayWithBadSignatureFails(t *testing.T) {
	svc, orderRepo, _, gateway, audit := newPaymentFixture()
	o := hostedOrder(t, uuid.New())
	require.NoError(t, o.MarkPaid("pay_1", "txn_1"))

	orderRepo.On("FindByGatewayOrderRef", mock.Anything, "order_rzp_1").Return(o, nil)
	gateway.On("Verify", mock.Anything, mock.Anything).Return(nil, payment.ErrInvalidSignature)

	// A settled order does not exempt a forged callback from the
	// signature check
	_, err := svc.Verify(context.Background(), VerifyPaymentRequest{
		GatewayOrderRef:   "order_rzp_1",
		GatewayPaymentRef: "pay_1",
		Signature:         "forged",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidSignature)
	assert.True(t, audit.has("payment.signature_rejected"))
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	svc, orderRepo, cartRepo, gateway, audit := newPaymentFixture()
	o := hostedOrder(t, uuid.New())

	orderRepo.On("FindByGatewayOrderRef", mock.Anything, "order_rzp_1").Return(o, nil)
	gateway.On("Verify", mock.Anything, mock.Anything).Return(nil, payment.ErrInvalidSignature)

	_, err := svc.Verify(context.Background(), VerifyPaymentRequest{
		GatewayOrderRef:   "order_rzp_1",
		GatewayPaymentRef: "pay_1",
		Signature:         "forged",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidSignature)

	// The payment stays pending and the rejection is audited
	assert.Equal(t, order.PaymentStatusPending, o.Payment.Status)
	assert.True(t, audit.has("payment.signature_rejected"))
	orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	cartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestVerifyUnknownRef(t *testing.T) {
	svc, orderRepo, _, gateway, _ := newPaymentFixture()
	orderRepo.On("FindByGatewayOrderRef", mock.Anything, "order_unknown").Return(nil, shared.ErrNotFound)

	_, err := svc.Verify(context.Background(), VerifyPaymentRequest{
		GatewayOrderRef:   "order_unknown",
		GatewayPaymentRef: "pay_1",
		Signature:         "sig",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}
