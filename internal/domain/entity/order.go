package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Order represents a persisted checkout. Monetary fields are stored in cents.
// Invariant kept by the service layer: Total = SubTotal - Discount + Shipping.
type Order struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Code           string             `gorm:"size:100;unique;not null" json:"code"`
	Type           enum.OrderType     `gorm:"default:0" json:"type"`
	CustomerID     *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	RegisterID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"register_id"`
	BillingAddress *string            `gorm:"type:text" json:"billing_address,omitempty"`
	SubTotal       int64              `gorm:"default:0" json:"-"`
	Discount       int64              `gorm:"default:0" json:"-"`
	Shipping       int64              `gorm:"default:0" json:"-"`
	TaxValue       int64              `gorm:"default:0" json:"-"`
	Total          int64              `gorm:"default:0" json:"-"`
	Tendered       int64              `gorm:"default:0" json:"-"`
	Change         int64              `gorm:"default:0" json:"-"`
	PaymentStatus  enum.PaymentStatus `gorm:"default:0;index" json:"payment_status"`
	ProcessStatus  enum.ProcessStatus `gorm:"default:0" json:"process_status"`
	VoidReason     *string            `gorm:"type:text" json:"void_reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Customer  *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Register  *Register       `gorm:"foreignKey:RegisterID" json:"register,omitempty"`
	LineItems []OrderLineItem `gorm:"foreignKey:OrderID" json:"line_items,omitempty"`
	Payments  []Payment       `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		SubTotal float64 `json:"sub_total"`
		Discount float64 `json:"discount"`
		Shipping float64 `json:"shipping"`
		TaxValue float64 `json:"tax_value"`
		Total    float64 `json:"total"`
		Tendered float64 `json:"tendered"`
		Change   float64 `json:"change"`
	}{
		Alias:    Alias(o),
		SubTotal: float64(o.SubTotal) / 100,
		Discount: float64(o.Discount) / 100,
		Shipping: float64(o.Shipping) / 100,
		TaxValue: float64(o.TaxValue) / 100,
		Total:    float64(o.Total) / 100,
		Tendered: float64(o.Tendered) / 100,
		Change:   float64(o.Change) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsVoid reports whether the order has been voided.
func (o *Order) IsVoid() bool {
	return o.PaymentStatus == enum.PaymentStatusVoid
}

// OrderLineItem represents a line in an order. Immutable after creation;
// only refunds reference it afterwards.
type OrderLineItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrderID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	UnitID     *uuid.UUID     `gorm:"type:uuid;index" json:"unit_id,omitempty"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	UnitPrice  int64          `gorm:"not null" json:"-"`
	Discount   int64          `gorm:"default:0" json:"-"`
	TaxValue   int64          `gorm:"default:0" json:"-"`
	TotalPrice int64          `gorm:"not null" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Order      Order            `gorm:"foreignKey:OrderID" json:"-"`
	Product    Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Deductions []BatchDeduction `gorm:"foreignKey:LineItemID" json:"deductions,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (li OrderLineItem) MarshalJSON() ([]byte, error) {
	type Alias OrderLineItem
	return json.Marshal(&struct {
		Alias
		UnitPrice  float64 `json:"unit_price"`
		Discount   float64 `json:"discount"`
		TaxValue   float64 `json:"tax_value"`
		TotalPrice float64 `json:"total_price"`
	}{
		Alias:      Alias(li),
		UnitPrice:  float64(li.UnitPrice) / 100,
		Discount:   float64(li.Discount) / 100,
		TaxValue:   float64(li.TaxValue) / 100,
		TotalPrice: float64(li.TotalPrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new line item
func (li *OrderLineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderLineItem model
func (OrderLineItem) TableName() string {
	return "order_line_items"
}

// Payment is an append-only record of money tendered against an order.
// An order's tendered total is always the sum of its payments.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Method    string    `gorm:"size:50;not null" json:"method"`
	Value     int64     `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Order Order `gorm:"foreignKey:OrderID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Value float64 `json:"value"`
	}{
		Alias: Alias(p),
		Value: float64(p.Value) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
