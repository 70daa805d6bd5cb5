package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/cache"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/pkg/apperror"
	"github.com/mwenda/sokopos-api/pkg/utils"
)

// StockService handles stock receipt and read-side stock queries.
type StockService struct {
	productRepo repository.ProductRepository
	batchRepo   repository.StockBatchRepository
	stockCache  cache.StockQuantityCache
}

// NewStockService creates a new stock service
func NewStockService(
	productRepo repository.ProductRepository,
	batchRepo repository.StockBatchRepository,
	stockCache cache.StockQuantityCache,
) *StockService {
	return &StockService{
		productRepo: productRepo,
		batchRepo:   batchRepo,
		stockCache:  stockCache,
	}
}

// ReceiveBatchInput is the stock receipt payload. PurchasePrice is in cents;
// a nil ExpiryDate means the batch never expires.
type ReceiveBatchInput struct {
	ProductID     uuid.UUID
	UnitID        *uuid.UUID
	BatchNumber   string
	ExpiryDate    *time.Time
	Quantity      int
	PurchasePrice int64
}

// ReceiveBatch books received stock as a new dated batch and resyncs the
// product's aggregate quantity. A missing batch number gets a generated one.
func (s *StockService) ReceiveBatch(ctx context.Context, input *ReceiveBatchInput) (*entity.StockBatch, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewBadRequestError("Batch quantity must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	batchNumber := input.BatchNumber
	if batchNumber == "" {
		batchNumber = utils.GenerateBatchNumber()
	}

	batch := &entity.StockBatch{
		ProductID:     input.ProductID,
		UnitID:        input.UnitID,
		BatchNumber:   batchNumber,
		ExpiryDate:    input.ExpiryDate,
		Quantity:      input.Quantity,
		PurchasePrice: input.PurchasePrice,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	quantity, err := s.productRepo.ResyncQuantity(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.stockCache.Set(ctx, input.ProductID, quantity); err != nil {
		log.Printf("Warning: failed to update stock cache for product %s: %v", input.ProductID, err)
	}

	return batch, nil
}

// ListBatches returns all batches of a product, exhausted ones included.
func (s *StockService) ListBatches(ctx context.Context, productID uuid.UUID) ([]entity.StockBatch, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return s.batchRepo.ListByProduct(ctx, productID)
}

// GetQuantity returns the product's aggregate quantity, served from the
// cache when possible.
func (s *StockService) GetQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	if quantity, ok, err := s.stockCache.Get(ctx, productID); err == nil && ok {
		return quantity, nil
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, apperror.NewNotFoundError("Product")
	}

	if err := s.stockCache.Set(ctx, productID, product.Quantity); err != nil {
		log.Printf("Warning: failed to update stock cache for product %s: %v", productID, err)
	}
	return product.Quantity, nil
}

// GetLowStock returns products at or below their alert threshold.
func (s *StockService) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}
