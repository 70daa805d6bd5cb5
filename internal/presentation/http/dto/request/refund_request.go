package request

import "github.com/google/uuid"

// CreateRefundRequest represents a refund creation request
type CreateRefundRequest struct {
	Reason string                    `json:"reason" binding:"required,max=500"`
	Lines  []CreateRefundLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateRefundLineRequest represents one returned quantity
type CreateRefundLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	UnitPrice float64   `json:"unit_price" binding:"min=0"`
}
