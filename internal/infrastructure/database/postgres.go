package database

import (
	"fmt"
	"log"

	"github.com/mwenda/sokopos-api/internal/config"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Catalog entities
		&entity.Unit{},
		&entity.Product{},
		&entity.StockBatch{},

		// CRM entities
		&entity.Customer{},

		// Register entities
		&entity.Register{},
		&entity.RegisterHistoryEntry{},

		// Transaction entities
		&entity.Order{},
		&entity.OrderLineItem{},
		&entity.BatchDeduction{},
		&entity.Payment{},
		&entity.Refund{},
		&entity.RefundLineItem{},

		// System entities
		&entity.IdempotencyKey{},
		&entity.StoreSettings{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds the database with default data (settings, unit, a
// default register whose operator PIN comes from REGISTER_DEFAULT_PIN)
func SeedDefaultData(db *gorm.DB, orderCodePrefix string) error {
	log.Println("Seeding default data...")

	if orderCodePrefix == "" {
		orderCodePrefix = "ORD-"
	}

	var settings entity.StoreSettings
	if err := db.First(&settings).Error; err != nil {
		settings = entity.StoreSettings{
			StoreName:       "SokoPOS",
			OrderCodePrefix: orderCodePrefix,
			Currency:        "KES",
		}
		if err := db.Create(&settings).Error; err != nil {
			log.Printf("Warning: failed to create default settings: %v", err)
		}
	}

	var unit entity.Unit
	if err := db.Where("name = ?", "Piece").First(&unit).Error; err != nil {
		unit = entity.Unit{Name: "Piece", ShortCode: "pc"}
		if err := db.Create(&unit).Error; err != nil {
			log.Printf("Warning: failed to create default unit: %v", err)
		}
	}

	var register entity.Register
	if err := db.Where("name = ?", "Main Register").First(&register).Error; err != nil {
		register = entity.Register{Name: "Main Register"}

		if pin := viper.GetString("REGISTER_DEFAULT_PIN"); pin != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("Warning: failed to hash register PIN: %v", err)
			} else {
				register.OperatorPINHash = string(hash)
			}
		}

		if err := db.Create(&register).Error; err != nil {
			log.Printf("Warning: failed to create default register: %v", err)
		}
	}

	log.Println("Default data seeding completed")
	return nil
}
