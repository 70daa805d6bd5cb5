package cache

import (
	"context"

	"github.com/google/uuid"
)

// StockQuantityCache mirrors the aggregate stock quantity of products for hot
// read paths. Postgres remains authoritative; every resync writes through and
// every direct aggregate mutation invalidates.
type StockQuantityCache interface {
	Get(ctx context.Context, productID uuid.UUID) (int, bool, error)
	Set(ctx context.Context, productID uuid.UUID, quantity int) error
	Invalidate(ctx context.Context, productID uuid.UUID) error
}

// NoopStockQuantityCache is used when no Redis address is configured.
type NoopStockQuantityCache struct{}

func (NoopStockQuantityCache) Get(_ context.Context, _ uuid.UUID) (int, bool, error) {
	return 0, false, nil
}

func (NoopStockQuantityCache) Set(_ context.Context, _ uuid.UUID, _ int) error {
	return nil
}

func (NoopStockQuantityCache) Invalidate(_ context.Context, _ uuid.UUID) error {
	return nil
}
