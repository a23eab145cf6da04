package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/order"
)

// UpdateStatusRequest moves an order to a new fulfillment status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateTrackingRequest records shipment tracking and marks the order shipped
type UpdateTrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	Carrier        string `json:"carrier"`
	TrackingURL    string `json:"tracking_url"`
	Note           string `json:"note"`
}

// UpdatePaymentStatusRequest settles or fails an offline payment
type UpdatePaymentStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=completed failed"`
	TransactionID string `json:"transaction_id"`
}

// CancelRequest aborts an order before shipment
type CancelRequest struct {
	Reason string `json:"reason"`
}

// VerifyPaymentRequest carries the gateway callback parameters for a
// hosted payment
type VerifyPaymentRequest struct {
	GatewayOrderRef   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentRef string `json:"gateway_payment_id" binding:"required"`
	Signature         string `json:"gateway_signature" binding:"required"`
}

// ItemResponse is one order line in API responses
type ItemResponse struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	ProductName    string     `json:"product_name"`
	SKU            string     `json:"sku"`
	VariantOptions string     `json:"variant_options,omitempty"`
	PricePerUnit   int64      `json:"price_per_unit"`
	Quantity       int64      `json:"quantity"`
	Subtotal       int64      `json:"subtotal"`
}

// Response is the API representation of an order
type Response struct {
	ID              uuid.UUID            `json:"id"`
	OrderNumber     string               `json:"order_number"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	Status          string               `json:"status"`
	Items           []ItemResponse       `json:"items"`
	Subtotal        int64                `json:"subtotal"`
	Discount        int64                `json:"discount"`
	ShippingCost    int64                `json:"shipping_cost"`
	Tax             int64                `json:"tax"`
	Total           int64                `json:"total"`
	Currency        string               `json:"currency"`
	PaymentMethod   string               `json:"payment_method"`
	PaymentStatus   string               `json:"payment_status"`
	ShippingAddress string               `json:"shipping_address"`
	TrackingNumber  string               `json:"tracking_number,omitempty"`
	Carrier         string               `json:"carrier,omitempty"`
	TrackingURL     string               `json:"tracking_url,omitempty"`
	StatusHistory   []order.StatusChange `json:"status_history"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// SummaryResponse is the compact representation used in order lists
type SummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	ItemCount     int       `json:"item_count"`
	Total         int64     `json:"total"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts a domain order to its API representation
func ToResponse(o *order.Order) Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			VariantOptions: item.VariantOptions,
			PricePerUnit:   item.PricePerUnit,
			Quantity:       item.Quantity,
			Subtotal:       item.Subtotal,
		})
	}
	return Response{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Status:          o.Status.String(),
		Items:           items,
		Subtotal:        o.Pricing.Subtotal,
		Discount:        o.Pricing.DiscountAmount,
		ShippingCost:    o.Pricing.ShippingCost,
		Tax:             o.Pricing.TaxAmount,
		Total:           o.Pricing.Total,
		Currency:        o.Pricing.Currency,
		PaymentMethod:   o.Payment.Method.String(),
		PaymentStatus:   o.Payment.Status.String(),
		ShippingAddress: o.ShippingAddress.String(),
		TrackingNumber:  o.Tracking.Number,
		Carrier:         o.Tracking.Carrier,
		TrackingURL:     o.Tracking.URL,
		StatusHistory:   o.StatusHistory,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToSummaryResponse converts a domain order to its list representation
func ToSummaryResponse(o *order.Order) SummaryResponse {
	return SummaryResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		ItemCount:     len(o.Items),
		Total:         o.Pricing.Total,
		Currency:      o.Pricing.Currency,
		PaymentMethod: o.Payment.Method.String(),
		PaymentStatus: o.Payment.Status.String(),
		CreatedAt:     o.CreatedAt,
	}
}
