package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	domainRepo "github.com/mwenda/sokopos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetByCode(ctx context.Context, code string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).First(&order, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("LineItems.Product").
		Preload("LineItems.Deductions").
		Preload("Payments").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// Delete hard-deletes the order row. Saga compensation must not leave a
// soft-deleted half-order behind.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&entity.Order{}, "id = ?", id).Error
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if params.Search != "" {
		query = query.Where("code ILIKE ?", "%"+params.Search+"%")
	}

	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.RegisterID != nil {
		query = query.Where("register_id = ?", *params.RegisterID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := orderSortColumn(params.SortBy)
	sortOrder := "DESC"
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order(sortBy + " " + sortOrder).
		Find(&orders).Error

	return orders, total, err
}

// orderSortColumn maps a caller-supplied sort key onto a known column. The
// key goes into the ORDER BY clause verbatim, so anything unknown falls back
// to created_at.
func orderSortColumn(key string) string {
	switch key {
	case "code", "total", "payment_status", "created_at", "updated_at":
		return key
	default:
		return "created_at"
	}
}

func (r *orderRepository) UpdateProcessStatus(ctx context.Context, id uuid.UUID, status enum.ProcessStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", id).
		Update("process_status", status).Error
}

func (r *orderRepository) UpdatePaymentFields(ctx context.Context, id uuid.UUID, tendered, change int64, status enum.PaymentStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tendered":       tendered,
			"change":         change,
			"payment_status": status,
		}).Error
}

// Stats aggregates non-void orders grouped by payment status.
func (r *orderRepository) Stats(ctx context.Context) ([]domainRepo.OrderStatRow, error) {
	var rows []domainRepo.OrderStatRow
	err := r.db.WithContext(ctx).Model(&entity.Order{}).
		Select("payment_status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total_cents").
		Where("payment_status <> ?", enum.PaymentStatusVoid).
		Group("payment_status").
		Scan(&rows).Error
	return rows, err
}

type orderLineItemRepository struct {
	db *gorm.DB
}

// NewOrderLineItemRepository creates a new order line item repository
func NewOrderLineItemRepository(db *gorm.DB) domainRepo.OrderLineItemRepository {
	return &orderLineItemRepository{db: db}
}

func (r *orderLineItemRepository) CreateBatch(ctx context.Context, items []entity.OrderLineItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *orderLineItemRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.OrderLineItem, error) {
	var items []entity.OrderLineItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Find(&items).Error
	return items, err
}

func (r *orderLineItemRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&entity.OrderLineItem{}, "order_id = ?", orderID).Error
}
