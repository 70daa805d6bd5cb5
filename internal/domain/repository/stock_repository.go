package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// ResyncQuantity recomputes the aggregate quantity cache as the sum of
	// the product's batch quantities and returns the new value.
	ResyncQuantity(ctx context.Context, id uuid.UUID) (int, error)
	// IncrementQuantity credits the aggregate cache directly, bypassing the
	// batches. Used by refund reversal only.
	IncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error
	// DecrementQuantity debits the aggregate cache directly (refund
	// compensation only).
	DecrementQuantity(ctx context.Context, id uuid.UUID, amount int) error
	GetLowStock(ctx context.Context) ([]entity.Product, error)
}

// StockBatchRepository defines the interface for stock batch data operations
type StockBatchRepository interface {
	Create(ctx context.Context, batch *entity.StockBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StockBatch, error)
	// ListForAllocation returns batches with quantity > 0 for the
	// (product, unit) pair in FEFO order: expiry ascending, batches that
	// never expire last.
	ListForAllocation(ctx context.Context, productID uuid.UUID, unitID *uuid.UUID) ([]entity.StockBatch, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.StockBatch, error)
	// DecrementQuantity atomically takes amount from the batch only if
	// enough remains (UPDATE ... WHERE quantity >= amount). Returns false
	// when a concurrent allocation got there first.
	DecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error)
	// IncrementQuantity credits quantity back to the batch (saga
	// compensation only).
	IncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error
}

// BatchDeductionRepository defines the interface for allocation audit rows
type BatchDeductionRepository interface {
	CreateBatch(ctx context.Context, deductions []entity.BatchDeduction) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.BatchDeduction, error)
	// DeleteByOrderID removes all deductions of an order permanently
	// (saga compensation only).
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
}
