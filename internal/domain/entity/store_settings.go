package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreSettings holds store-wide configuration. A single row is seeded on
// startup; this core only reads it (the admin UI owns edits).
type StoreSettings struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	StoreName       string         `gorm:"size:255;default:'SokoPOS'" json:"store_name"`
	OrderCodePrefix string         `gorm:"size:20;default:'ORD-'" json:"order_code_prefix"`
	Currency        string         `gorm:"size:10;default:'KES'" json:"currency"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating new settings
func (s *StoreSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StoreSettings model
func (StoreSettings) TableName() string {
	return "store_settings"
}
