package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Refund reverses part of an order. Creating a refund does not touch stock;
// processing it credits the refunded quantities back to the aggregate stock
// cache (never to a specific batch).
type Refund struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	OrderID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"order_id"`
	Status        enum.RefundStatus `gorm:"default:0" json:"status"`
	TotalRefunded int64             `gorm:"default:0" json:"-"`
	Reason        string            `gorm:"type:text" json:"reason"`
	ProcessedAt   *time.Time        `json:"processed_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Order     Order            `gorm:"foreignKey:OrderID" json:"-"`
	LineItems []RefundLineItem `gorm:"foreignKey:RefundID" json:"line_items,omitempty"`
}

// MarshalJSON converts cents to decimal for API responses
func (r Refund) MarshalJSON() ([]byte, error) {
	type Alias Refund
	return json.Marshal(&struct {
		Alias
		TotalRefunded float64 `json:"total_refunded"`
	}{
		Alias:         Alias(r),
		TotalRefunded: float64(r.TotalRefunded) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new refund
func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Refund model
func (Refund) TableName() string {
	return "refunds"
}

// RefundLineItem is a refunded quantity of a product.
type RefundLineItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	RefundID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"refund_id"`
	ProductID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	UnitPrice  int64          `gorm:"not null" json:"-"`
	TotalPrice int64          `gorm:"not null" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Refund  Refund  `gorm:"foreignKey:RefundID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON converts cents to decimal for API responses
func (li RefundLineItem) MarshalJSON() ([]byte, error) {
	type Alias RefundLineItem
	return json.Marshal(&struct {
		Alias
		UnitPrice  float64 `json:"unit_price"`
		TotalPrice float64 `json:"total_price"`
	}{
		Alias:      Alias(li),
		UnitPrice:  float64(li.UnitPrice) / 100,
		TotalPrice: float64(li.TotalPrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new refund line item
func (li *RefundLineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RefundLineItem model
func (RefundLineItem) TableName() string {
	return "refund_line_items"
}
