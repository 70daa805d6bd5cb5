package request

import "github.com/google/uuid"

// CreateOrderRequest represents a checkout request. Monetary values are
// decimal amounts, converted to cents at the boundary.
type CreateOrderRequest struct {
	Type       int                      `json:"type" binding:"min=0,max=1"`
	RegisterID uuid.UUID                `json:"register_id" binding:"required"`
	CustomerID *uuid.UUID               `json:"customer_id"`
	Discount   float64                  `json:"discount" binding:"min=0"`
	Shipping   float64                  `json:"shipping" binding:"min=0"`
	Lines      []CreateOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
	Payments   []OrderPaymentRequest    `json:"payments" binding:"omitempty,dive"`
}

// CreateOrderLineRequest represents one cart line
type CreateOrderLineRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	UnitID    *uuid.UUID `json:"unit_id"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	UnitPrice float64    `json:"unit_price" binding:"min=0"`
	Discount  float64    `json:"discount" binding:"min=0"`
	TaxValue  float64    `json:"tax_value" binding:"min=0"`
}

// OrderPaymentRequest represents money tendered against an order
type OrderPaymentRequest struct {
	Method string  `json:"method" binding:"required,max=50"`
	Value  float64 `json:"value" binding:"required,gt=0"`
}

// UpdateOrderStatusRequest represents a fulfilment status change
type UpdateOrderStatusRequest struct {
	Status int `json:"status" binding:"min=0,max=3"`
}

// VoidOrderRequest represents an order void request
type VoidOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
