package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const defaultRazorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayGateway implements the hosted checkout flow against the Razorpay
// Orders API. CreateIntent opens a provider-side order; the storefront
// renders the provider's widget from ClientData, and the client posts back
// an HMAC-signed proof that Verify authenticates offline.
type RazorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRazorpayGateway creates a new RazorpayGateway from configuration
func NewRazorpayGateway(cfg config.PaymentConfig, logger *zap.Logger) (*RazorpayGateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, shared.NewDomainError("INVALID_GATEWAY_CONFIG", "Razorpay key ID and secret are required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultRazorpayBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RazorpayGateway{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Method returns the payment method this gateway serves
func (g *RazorpayGateway) Method() payment.Method {
	return payment.MethodRazorpay
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent opens a provider-side order for the amount
func (g *RazorpayGateway) CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.OrderNumber,
		Notes: map[string]string{
			"order_id": req.OrderID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.Error("razorpay order creation failed",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err))
		return nil, shared.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, shared.ErrGatewayUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		var gatewayErr razorpayErrorResponse
		_ = json.Unmarshal(respBody, &gatewayErr)
		g.logger.Error("razorpay order creation rejected",
			zap.String("order_number", req.OrderNumber),
			zap.Int("status_code", resp.StatusCode),
			zap.String("gateway_code", gatewayErr.Error.Code),
			zap.String("gateway_description", gatewayErr.Error.Description))
		return nil, shared.ErrGatewayUnavailable
	}

	var orderResp razorpayOrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil {
		return nil, shared.ErrGatewayUnavailable
	}
	if orderResp.ID == "" {
		return nil, shared.ErrGatewayUnavailable
	}

	return &payment.Intent{
		GatewayOrderRef: orderResp.ID,
		Amount:          orderResp.Amount,
		Currency:        orderResp.Currency,
		ClientData: map[string]string{
			"key_id":            g.keyID,
			"gateway_order_ref": orderResp.ID,
			"amount":            strconv.FormatInt(orderResp.Amount, 10),
			"currency":          orderResp.Currency,
			"order_number":      req.OrderNumber,
			"email":             req.Email,
			"phone":             req.Phone,
		},
	}, nil
}

// Verify authenticates the client-reported proof against the shared
// secret. The signature is HMAC-SHA256 over "orderRef|paymentRef" in hex,
// compared in constant time. Repeated calls with the same proof succeed.
func (g *RazorpayGateway) Verify(_ context.Context, req payment.VerifyRequest) (*payment.VerifiedPayment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	expected := g.sign(req.GatewayOrderRef, req.GatewayPaymentRef)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		return nil, shared.ErrInvalidSignature
	}

	return &payment.VerifiedPayment{
		GatewayOrderRef:   req.GatewayOrderRef,
		GatewayPaymentRef: req.GatewayPaymentRef,
		TransactionID:     req.GatewayPaymentRef,
	}, nil
}

func (g *RazorpayGateway) sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderRef, paymentRef)
	return hex.EncodeToString(mac.Sum(nil))
}
