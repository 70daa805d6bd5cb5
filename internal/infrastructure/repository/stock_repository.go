package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	domainRepo "github.com/mwenda/sokopos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Unit").
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// ResyncQuantity rewrites the aggregate quantity cache from the per-batch
// ledgers so read paths stay consistent after an allocation.
func (r *productRepository) ResyncQuantity(ctx context.Context, id uuid.UUID) (int, error) {
	err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr(
			"(SELECT COALESCE(SUM(quantity), 0) FROM stock_batches WHERE product_id = ? AND deleted_at IS NULL)", id,
		)).Error
	if err != nil {
		return 0, err
	}

	var quantity int
	err = r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Select("quantity").
		Scan(&quantity).Error
	return quantity, err
}

func (r *productRepository) IncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	return r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", amount)).Error
}

func (r *productRepository) DecrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	return r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity - ?", amount)).Error
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("quantity <= quantity_alert").
		Preload("Unit").
		Find(&products).Error
	return products, err
}

type stockBatchRepository struct {
	db *gorm.DB
}

// NewStockBatchRepository creates a new stock batch repository
func NewStockBatchRepository(db *gorm.DB) domainRepo.StockBatchRepository {
	return &stockBatchRepository{db: db}
}

func (r *stockBatchRepository) Create(ctx context.Context, batch *entity.StockBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *stockBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockBatch, error) {
	var batch entity.StockBatch
	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &batch, err
}

// ListForAllocation returns non-empty batches in FEFO order. Batches that
// never expire (NULL expiry) come last.
func (r *stockBatchRepository) ListForAllocation(ctx context.Context, productID uuid.UUID, unitID *uuid.UUID) ([]entity.StockBatch, error) {
	var batches []entity.StockBatch
	query := r.db.WithContext(ctx).
		Where("product_id = ? AND quantity > 0", productID)
	if unitID != nil {
		query = query.Where("unit_id = ?", *unitID)
	}
	err := query.
		Order("expiry_date ASC NULLS LAST, created_at ASC").
		Find(&batches).Error
	return batches, err
}

func (r *stockBatchRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.StockBatch, error) {
	var batches []entity.StockBatch
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date ASC NULLS LAST, created_at ASC").
		Find(&batches).Error
	return batches, err
}

// DecrementQuantity atomically takes amount from a batch only if enough
// remains: UPDATE stock_batches SET quantity = quantity - ? WHERE id = ?
// AND quantity >= ?. A false return means a concurrent allocation won the
// race and the caller should re-read and retry with a smaller amount.
func (r *stockBatchRepository) DecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.StockBatch{}).
		Where("id = ? AND quantity >= ?", id, amount).
		Update("quantity", gorm.Expr("quantity - ?", amount))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *stockBatchRepository) IncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	return r.db.WithContext(ctx).Model(&entity.StockBatch{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", amount)).Error
}

type batchDeductionRepository struct {
	db *gorm.DB
}

// NewBatchDeductionRepository creates a new batch deduction repository
func NewBatchDeductionRepository(db *gorm.DB) domainRepo.BatchDeductionRepository {
	return &batchDeductionRepository{db: db}
}

func (r *batchDeductionRepository) CreateBatch(ctx context.Context, deductions []entity.BatchDeduction) error {
	if len(deductions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&deductions).Error
}

func (r *batchDeductionRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.BatchDeduction, error) {
	var deductions []entity.BatchDeduction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&deductions).Error
	return deductions, err
}

func (r *batchDeductionRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.BatchDeduction{}, "order_id = ?", orderID).Error
}
