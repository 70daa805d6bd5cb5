package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/cache"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
)

// StockAllocator deducts physical stock from dated batches using
// earliest-expiry-first (FEFO) ordering. Batches that never expire are
// consumed last. Every deduction is snapshotted so cost-of-goods stays
// traceable after the batch is mutated.
type StockAllocator struct {
	batchRepo   repository.StockBatchRepository
	productRepo repository.ProductRepository
	stockCache  cache.StockQuantityCache
}

// NewStockAllocator creates a new stock allocator
func NewStockAllocator(
	batchRepo repository.StockBatchRepository,
	productRepo repository.ProductRepository,
	stockCache cache.StockQuantityCache,
) *StockAllocator {
	return &StockAllocator{
		batchRepo:   batchRepo,
		productRepo: productRepo,
		stockCache:  stockCache,
	}
}

// Allocate walks the product's batches in FEFO order and takes
// min(batch.quantity, remaining) from each until the demand is met or the
// batches are exhausted. Each take is an atomic conditional decrement, so a
// batch can never go negative even when two allocations race: the loser of a
// race re-reads the batch and retries with whatever is left. Returns the
// deduction snapshots (not yet persisted) and the unmet quantity.
//
// After the walk the aggregate quantity cache is resynced from the batches.
func (a *StockAllocator) Allocate(ctx context.Context, orderID, lineItemID, productID uuid.UUID, unitID *uuid.UUID, quantity int) ([]entity.BatchDeduction, int, error) {
	batches, err := a.batchRepo.ListForAllocation(ctx, productID, unitID)
	if err != nil {
		return nil, 0, err
	}

	remaining := quantity
	deductions := make([]entity.BatchDeduction, 0, len(batches))

	for i := range batches {
		if remaining == 0 {
			break
		}
		batch := batches[i]
		available := batch.Quantity

		for remaining > 0 && available > 0 {
			take := min(remaining, available)

			ok, err := a.batchRepo.DecrementQuantity(ctx, batch.ID, take)
			if err != nil {
				return deductions, remaining, err
			}
			if !ok {
				// Lost a race against a concurrent allocation; re-read
				// the batch and retry with what is actually left.
				fresh, err := a.batchRepo.GetByID(ctx, batch.ID)
				if err != nil {
					return deductions, remaining, err
				}
				if fresh == nil {
					available = 0
					break
				}
				available = fresh.Quantity
				continue
			}

			deductions = append(deductions, entity.BatchDeduction{
				OrderID:       orderID,
				LineItemID:    lineItemID,
				BatchID:       batch.ID,
				ProductID:     batch.ProductID,
				BatchNumber:   batch.BatchNumber,
				ExpiryDate:    batch.ExpiryDate,
				Quantity:      take,
				PurchasePrice: batch.PurchasePrice,
			})
			remaining -= take
			break
		}
	}

	if err := a.resync(ctx, productID); err != nil {
		return deductions, remaining, err
	}

	return deductions, remaining, nil
}

// Restore credits deducted quantities back to their batches. Used by the
// createOrder saga to compensate a failed downstream step.
func (a *StockAllocator) Restore(ctx context.Context, deductions []entity.BatchDeduction) error {
	touched := make(map[uuid.UUID]struct{})
	for _, d := range deductions {
		if err := a.batchRepo.IncrementQuantity(ctx, d.BatchID, d.Quantity); err != nil {
			return err
		}
		touched[d.ProductID] = struct{}{}
	}
	for productID := range touched {
		if err := a.resync(ctx, productID); err != nil {
			return err
		}
	}
	return nil
}

// resync rewrites the aggregate quantity cache from the batch ledgers and
// pushes the fresh value to the read-side cache.
func (a *StockAllocator) resync(ctx context.Context, productID uuid.UUID) error {
	quantity, err := a.productRepo.ResyncQuantity(ctx, productID)
	if err != nil {
		return err
	}
	if err := a.stockCache.Set(ctx, productID, quantity); err != nil {
		log.Printf("Warning: failed to update stock cache for product %s: %v", productID, err)
	}
	return nil
}
