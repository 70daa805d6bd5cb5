package request

import "github.com/google/uuid"

// ReceiveBatchRequest represents a stock receipt. ExpiryDate is a date string
// (2006-01-02); omitted means the batch never expires.
type ReceiveBatchRequest struct {
	ProductID     uuid.UUID  `json:"product_id" binding:"required"`
	UnitID        *uuid.UUID `json:"unit_id"`
	BatchNumber   string     `json:"batch_number" binding:"omitempty,max=100"`
	ExpiryDate    *string    `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	Quantity      int        `json:"quantity" binding:"required,min=1"`
	PurchasePrice float64    `json:"purchase_price" binding:"min=0"`
}
