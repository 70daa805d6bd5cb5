package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/cache"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/pkg/apperror"
	"github.com/mwenda/sokopos-api/pkg/pagination"
)

// RefundService handles returns in two phases: CreateRefund records intent
// without touching stock; ProcessRefund credits the returned quantities back
// to the aggregate stock cache. Returned goods are never re-dated, so the
// credit goes to the aggregate only and no batch is restored.
type RefundService struct {
	refundRepo   repository.RefundRepository
	lineItemRepo repository.RefundLineItemRepository
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	stockCache   cache.StockQuantityCache
}

// NewRefundService creates a new refund service
func NewRefundService(
	refundRepo repository.RefundRepository,
	lineItemRepo repository.RefundLineItemRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	stockCache cache.StockQuantityCache,
) *RefundService {
	return &RefundService{
		refundRepo:   refundRepo,
		lineItemRepo: lineItemRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		stockCache:   stockCache,
	}
}

// CreateRefundInput is the refund request payload. Monetary values in cents.
type CreateRefundInput struct {
	OrderID uuid.UUID
	Reason  string
	Lines   []CreateRefundLine
}

// CreateRefundLine is one returned quantity of a product.
type CreateRefundLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice int64
}

// CreateRefund records a pending refund against the order. Stock is not
// touched until the refund is processed.
func (s *RefundService) CreateRefund(ctx context.Context, input *CreateRefundInput) (*entity.Refund, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewBadRequestError("Refund must have at least one line item")
	}

	order, err := s.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	var total int64
	lineItems := make([]entity.RefundLineItem, len(input.Lines))
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Refund quantity must be positive")
		}
		lineTotal := line.UnitPrice * int64(line.Quantity)
		lineItems[i] = entity.RefundLineItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: lineTotal,
		}
		total += lineTotal
	}

	refund := &entity.Refund{
		OrderID:       input.OrderID,
		Status:        enum.RefundStatusPending,
		TotalRefunded: total,
		Reason:        input.Reason,
	}
	if err := s.refundRepo.Create(ctx, refund); err != nil {
		return nil, err
	}

	for i := range lineItems {
		lineItems[i].RefundID = refund.ID
	}
	if err := s.lineItemRepo.CreateBatch(ctx, lineItems); err != nil {
		if derr := s.refundRepo.Delete(ctx, refund.ID); derr != nil {
			log.Printf("Warning: compensation failed to delete refund %s: %v", refund.ID, derr)
		}
		return nil, err
	}

	refund.LineItems = lineItems
	return refund, nil
}

// ProcessRefund completes a pending refund: each refunded quantity is
// credited to the product's aggregate quantity and the cached read value is
// invalidated. Processing is not repeatable.
func (s *RefundService) ProcessRefund(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	refund, err := s.refundRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperror.NewNotFoundError("Refund")
	}
	if refund.Status == enum.RefundStatusCompleted {
		return nil, apperror.ErrRefundProcessed
	}

	credited := make([]entity.RefundLineItem, 0, len(refund.LineItems))
	for _, item := range refund.LineItems {
		if err := s.productRepo.IncrementQuantity(ctx, item.ProductID, item.Quantity); err != nil {
			s.compensate(ctx, refund.ID, credited)
			return nil, err
		}
		credited = append(credited, item)
		// stale cache entry expires on its own TTL
		_ = s.stockCache.Invalidate(ctx, item.ProductID)
	}

	now := time.Now()
	refund.Status = enum.RefundStatusCompleted
	refund.ProcessedAt = &now
	if err := s.refundRepo.Update(ctx, refund); err != nil {
		s.compensate(ctx, refund.ID, credited)
		return nil, err
	}

	return refund, nil
}

// compensate takes back the aggregate credits of a refund that failed partway
// through processing, so the refund stays pending and a retry starts from
// zero. Each debit is attempted even if an earlier one fails; failures are
// logged because there is nothing better to do with them at this point.
func (s *RefundService) compensate(ctx context.Context, refundID uuid.UUID, credited []entity.RefundLineItem) {
	for _, item := range credited {
		if err := s.productRepo.DecrementQuantity(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("Warning: compensation failed to debit product %s for refund %s: %v", item.ProductID, refundID, err)
		}
		_ = s.stockCache.Invalidate(ctx, item.ProductID)
	}
}

// GetRefund returns the refund with its line items.
func (s *RefundService) GetRefund(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	refund, err := s.refundRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperror.NewNotFoundError("Refund")
	}
	return refund, nil
}

// ListRefunds returns a paginated refund listing, optionally scoped to one
// order.
func (s *RefundService) ListRefunds(ctx context.Context, params *repository.RefundFilterParams) (*pagination.PaginatedResult[entity.Refund], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	refunds, total, err := s.refundRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(refunds, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}
