package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	domainRepo "github.com/mwenda/sokopos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type refundRepository struct {
	db *gorm.DB
}

// NewRefundRepository creates a new refund repository
func NewRefundRepository(db *gorm.DB) domainRepo.RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(ctx context.Context, refund *entity.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *refundRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	var refund entity.Refund
	err := r.db.WithContext(ctx).First(&refund, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &refund, err
}

func (r *refundRepository) GetWithLineItems(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	var refund entity.Refund
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("LineItems.Product").
		First(&refund, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &refund, err
}

func (r *refundRepository) Update(ctx context.Context, refund *entity.Refund) error {
	return r.db.WithContext(ctx).Save(refund).Error
}

// Delete hard-deletes the refund row. Compensation must not leave a
// soft-deleted half-refund behind.
func (r *refundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&entity.Refund{}, "id = ?", id).Error
}

func (r *refundRepository) List(ctx context.Context, params *domainRepo.RefundFilterParams) ([]entity.Refund, int64, error) {
	var refunds []entity.Refund
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Refund{})

	if params.OrderID != nil {
		query = query.Where("order_id = ?", *params.OrderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("LineItems").
		Order("created_at DESC").
		Find(&refunds).Error

	return refunds, total, err
}

type refundLineItemRepository struct {
	db *gorm.DB
}

// NewRefundLineItemRepository creates a new refund line item repository
func NewRefundLineItemRepository(db *gorm.DB) domainRepo.RefundLineItemRepository {
	return &refundLineItemRepository{db: db}
}

func (r *refundLineItemRepository) CreateBatch(ctx context.Context, items []entity.RefundLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *refundLineItemRepository) GetByRefundID(ctx context.Context, refundID uuid.UUID) ([]entity.RefundLineItem, error) {
	var items []entity.RefundLineItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("refund_id = ?", refundID).
		Find(&items).Error
	return items, err
}
