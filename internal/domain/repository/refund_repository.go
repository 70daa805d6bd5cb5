package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/pkg/pagination"
)

// RefundRepository defines the interface for refund data operations
type RefundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Refund, error)
	GetWithLineItems(ctx context.Context, id uuid.UUID) (*entity.Refund, error)
	Update(ctx context.Context, refund *entity.Refund) error
	// Delete removes the refund row permanently (compensation only).
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *RefundFilterParams) ([]entity.Refund, int64, error)
}

// RefundFilterParams contains filtering parameters for refund queries
type RefundFilterParams struct {
	Pagination *pagination.PaginationParams
	OrderID    *uuid.UUID
}

// RefundLineItemRepository defines the interface for refund line item data operations
type RefundLineItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.RefundLineItem) error
	GetByRefundID(ctx context.Context, refundID uuid.UUID) ([]entity.RefundLineItem, error)
}
