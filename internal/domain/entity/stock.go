package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a sellable item. Quantity is the denormalized aggregate
// stock cache, kept in sync with the sum of the product's batches after every
// allocation (refund reversal credits it directly, see RefundService).
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UnitID        *uuid.UUID     `gorm:"type:uuid;index" json:"unit_id,omitempty"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Code          string         `gorm:"size:100;unique;not null" json:"code"`
	Quantity      int            `gorm:"default:0" json:"quantity"`
	QuantityAlert int            `gorm:"default:0" json:"quantity_alert"`
	BuyingPrice   int64          `gorm:"default:0" json:"-"`
	SellingPrice  int64          `gorm:"default:0" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Unit    *Unit        `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Batches []StockBatch `gorm:"foreignKey:ProductID" json:"-"`
}

// MarshalJSON converts cents to decimal prices for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		BuyingPrice  float64 `json:"buying_price"`
		SellingPrice float64 `json:"selling_price"`
	}{
		Alias:        Alias(p),
		BuyingPrice:  float64(p.BuyingPrice) / 100,
		SellingPrice: float64(p.SellingPrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Unit represents a unit of measurement
type Unit struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	ShortCode string         `gorm:"size:50" json:"short_code"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:UnitID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new unit
func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Unit model
func (Unit) TableName() string {
	return "units"
}

// StockBatch is a dated quantity of a product received at a specific purchase
// price. A nil ExpiryDate means the batch never expires and sorts last in
// FEFO order. Quantity never goes below zero: every decrement is a conditional
// update guarded by the current quantity.
type StockBatch struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	UnitID        *uuid.UUID     `gorm:"type:uuid;index" json:"unit_id,omitempty"`
	BatchNumber   string         `gorm:"size:100;not null" json:"batch_number"`
	ExpiryDate    *time.Time     `gorm:"type:date;index" json:"expiry_date,omitempty"`
	Quantity      int            `gorm:"default:0" json:"quantity"`
	PurchasePrice int64          `gorm:"default:0" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
	Unit    *Unit   `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
}

// MarshalJSON converts cents to decimal prices for API responses
func (b StockBatch) MarshalJSON() ([]byte, error) {
	type Alias StockBatch
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
	}{
		Alias:         Alias(b),
		PurchasePrice: float64(b.PurchasePrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new batch
func (b *StockBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockBatch model
func (StockBatch) TableName() string {
	return "stock_batches"
}

// BatchDeduction is the audit row written for every allocation: which batch a
// line item consumed, how much, and the batch's expiry and purchase price at
// that moment. The snapshot keeps cost-of-goods traceable even after the
// batch itself is mutated or exhausted.
type BatchDeduction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	LineItemID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"line_item_id"`
	BatchID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"batch_id"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	BatchNumber   string     `gorm:"size:100;not null" json:"batch_number"`
	ExpiryDate    *time.Time `gorm:"type:date" json:"expiry_date,omitempty"`
	Quantity      int        `gorm:"not null" json:"quantity"`
	PurchasePrice int64      `gorm:"not null" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MarshalJSON converts cents to decimal prices for API responses
func (d BatchDeduction) MarshalJSON() ([]byte, error) {
	type Alias BatchDeduction
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
	}{
		Alias:         Alias(d),
		PurchasePrice: float64(d.PurchasePrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new deduction
func (d *BatchDeduction) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BatchDeduction model
func (BatchDeduction) TableName() string {
	return "batch_deductions"
}
