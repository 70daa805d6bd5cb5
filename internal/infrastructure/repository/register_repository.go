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

type registerRepository struct {
	db *gorm.DB
}

// NewRegisterRepository creates a new register repository
func NewRegisterRepository(db *gorm.DB) domainRepo.RegisterRepository {
	return &registerRepository{db: db}
}

func (r *registerRepository) Create(ctx context.Context, register *entity.Register) error {
	return r.db.WithContext(ctx).Create(register).Error
}

func (r *registerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Register, error) {
	var register entity.Register
	err := r.db.WithContext(ctx).First(&register, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &register, err
}

func (r *registerRepository) GetWithHistory(ctx context.Context, id uuid.UUID) (*entity.Register, error) {
	var register entity.Register
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&register, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &register, err
}

// Claim follows the same conditional-update contract the stock batches use:
// UPDATE registers SET status, operator, balance WHERE id = ? AND status =
// closed, with RowsAffected deciding who won the race.
func (r *registerRepository) Claim(ctx context.Context, id uuid.UUID, operator string, balance int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Register{}).
		Where("id = ? AND status = ?", id, enum.RegisterStatusClosed).
		Updates(map[string]interface{}{
			"status":   enum.RegisterStatusOpened,
			"operator": operator,
			"balance":  balance,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *registerRepository) Update(ctx context.Context, register *entity.Register) error {
	return r.db.WithContext(ctx).Save(register).Error
}

func (r *registerRepository) List(ctx context.Context) ([]entity.Register, error) {
	var registers []entity.Register
	err := r.db.WithContext(ctx).Order("name ASC").Find(&registers).Error
	return registers, err
}

type registerHistoryRepository struct {
	db *gorm.DB
}

// NewRegisterHistoryRepository creates a new register history repository
func NewRegisterHistoryRepository(db *gorm.DB) domainRepo.RegisterHistoryRepository {
	return &registerHistoryRepository{db: db}
}

func (r *registerHistoryRepository) Create(ctx context.Context, entry *entity.RegisterHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *registerHistoryRepository) ListByRegisterID(ctx context.Context, registerID uuid.UUID) ([]entity.RegisterHistoryEntry, error) {
	var entries []entity.RegisterHistoryEntry
	err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
