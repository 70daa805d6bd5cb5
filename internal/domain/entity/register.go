package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Register is a cash drawer with an open/close lifecycle. Balance is only
// mutated while the register is opened, by exactly one operator.
type Register struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Name            string              `gorm:"size:255;not null" json:"name"`
	Status          enum.RegisterStatus `gorm:"default:0" json:"status"`
	Balance         int64               `gorm:"default:0" json:"-"`
	Operator        *string             `gorm:"size:255" json:"operator,omitempty"`
	OperatorPINHash string              `gorm:"size:255" json:"-"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relationships
	History []RegisterHistoryEntry `gorm:"foreignKey:RegisterID" json:"history,omitempty"`
}

// MarshalJSON converts the cents balance to decimal for API responses
func (r Register) MarshalJSON() ([]byte, error) {
	type Alias Register
	return json.Marshal(&struct {
		Alias
		Balance float64 `json:"balance"`
	}{
		Alias:   Alias(r),
		Balance: float64(r.Balance) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new register
func (r *Register) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Register model
func (Register) TableName() string {
	return "registers"
}

// IsOpened reports whether the register is currently opened.
func (r *Register) IsOpened() bool {
	return r.Status == enum.RegisterStatusOpened
}

// RegisterHistoryEntry is an immutable audit record of a drawer movement.
// Entries are never modified or deleted; corrections create new entries.
type RegisterHistoryEntry struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	RegisterID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"register_id"`
	Action          enum.RegisterAction  `gorm:"not null" json:"action"`
	TransactionType enum.TransactionType `gorm:"default:0" json:"transaction_type"`
	Description     *string              `gorm:"type:text" json:"description,omitempty"`
	Value           int64                `gorm:"not null" json:"-"`
	BalanceBefore   int64                `gorm:"not null" json:"-"`
	BalanceAfter    int64                `gorm:"not null" json:"-"`
	CreatedAt       time.Time            `json:"created_at"`

	// Relationships
	Register Register `gorm:"foreignKey:RegisterID" json:"-"`
}

// MarshalJSON converts cents to decimal for API responses
func (h RegisterHistoryEntry) MarshalJSON() ([]byte, error) {
	type Alias RegisterHistoryEntry
	return json.Marshal(&struct {
		Alias
		Value         float64 `json:"value"`
		BalanceBefore float64 `json:"balance_before"`
		BalanceAfter  float64 `json:"balance_after"`
	}{
		Alias:         Alias(h),
		Value:         float64(h.Value) / 100,
		BalanceBefore: float64(h.BalanceBefore) / 100,
		BalanceAfter:  float64(h.BalanceAfter) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new history entry
func (h *RegisterHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RegisterHistoryEntry model
func (RegisterHistoryEntry) TableName() string {
	return "register_history"
}
