package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

func newTestGateway(t *testing.T, baseURL string) *RazorpayGateway {
	t.Helper()

	gateway, err := NewRazorpayGateway(config.PaymentConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
		BaseURL:   baseURL,
	}, zap.NewNop())
	require.NoError(t, err)
	return gateway
}

func signProof(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", orderRef, paymentRef)
	return hex.EncodeToString(mac.Sum(nil))
}

func intentRequest() payment.CreateIntentRequest {
	return payment.CreateIntentRequest{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-20260831-0001",
		Amount:      4300,
		Currency:    "USD",
		CustomerID:  uuid.New(),
		Email:       "dana@example.com",
		Phone:       "+15550100",
	}
}

func TestRazorpayCreateIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", username)
		assert.Equal(t, "test_secret", password)

		var body razorpayOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(4300), body.Amount)
		assert.Equal(t, "USD", body.Currency)
		assert.Equal(t, "ORD-20260831-0001", body.Receipt)

		json.NewEncoder(w).Encode(razorpayOrderResponse{
			ID:       "order_abc123",
			Amount:   body.Amount,
			Currency: body.Currency,
			Status:   "created",
		})
	}))
	defer server.Close()

	gateway := newTestGateway(t, server.URL)

	intent, err := gateway.CreateIntent(context.Background(), intentRequest())
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", intent.GatewayOrderRef)
	assert.Equal(t, int64(4300), intent.Amount)
	assert.Equal(t, "rzp_test_key", intent.ClientData["key_id"])
	assert.Equal(t, "4300", intent.ClientData["amount"])
	assert.Equal(t, "dana@example.com", intent.ClientData["email"])
}

func TestRazorpayCreateIntentGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`)
	}))
	defer server.Close()

	gateway := newTestGateway(t, server.URL)

	_, err := gateway.CreateIntent(context.Background(), intentRequest())
	assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)
}

func TestRazorpayCreateIntentRejectsInvalidRequest(t *testing.T) {
	gateway := newTestGateway(t, "http://localhost:0")

	req := intentRequest()
	req.Amount = 0

	_, err := gateway.CreateIntent(context.Background(), req)
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)
}

func TestRazorpayVerify(t *testing.T) {
	gateway := newTestGateway(t, "")

	proof := payment.VerifyRequest{
		GatewayOrderRef:   "order_abc123",
		GatewayPaymentRef: "pay_xyz789",
		Signature:         signProof("test_secret", "order_abc123", "pay_xyz789"),
	}

	verified, err := gateway.Verify(context.Background(), proof)
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", verified.GatewayOrderRef)
	assert.Equal(t, "pay_xyz789", verified.GatewayPaymentRef)
	assert.Equal(t, "pay_xyz789", verified.TransactionID)

	// Duplicate verify callbacks return the same result.
	again, err := gateway.Verify(context.Background(), proof)
	require.NoError(t, err)
	assert.Equal(t, verified, again)
}

func TestRazorpayVerifyRejectsBadSignature(t *testing.T) {
	gateway := newTestGateway(t, "")

	_, err := gateway.Verify(context.Background(), payment.VerifyRequest{
		GatewayOrderRef:   "order_abc123",
		GatewayPaymentRef: "pay_xyz789",
		Signature:         signProof("wrong_secret", "order_abc123", "pay_xyz789"),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidSignature)
}

func TestRazorpayVerifyRejectsEmptyRefs(t *testing.T) {
	gateway := newTestGateway(t, "")

	_, err := gateway.Verify(context.Background(), payment.VerifyRequest{
		GatewayPaymentRef: "pay_xyz789",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CALLBACK", domainErr.Code)
}

func TestNewRazorpayGatewayRequiresCredentials(t *testing.T) {
	_, err := NewRazorpayGateway(config.PaymentConfig{KeyID: "rzp_test_key"}, zap.NewNop())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_GATEWAY_CONFIG", domainErr.Code)
}
