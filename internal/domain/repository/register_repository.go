package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
)

// RegisterRepository defines the interface for register data operations
type RegisterRepository interface {
	Create(ctx context.Context, register *entity.Register) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Register, error)
	GetWithHistory(ctx context.Context, id uuid.UUID) (*entity.Register, error)
	// Claim atomically opens the register for one operator: the status,
	// operator and balance columns are written only if the register is
	// still closed. Returns false when a concurrent open got there first.
	Claim(ctx context.Context, id uuid.UUID, operator string, balance int64) (bool, error)
	Update(ctx context.Context, register *entity.Register) error
	List(ctx context.Context) ([]entity.Register, error)
}

// RegisterHistoryRepository defines the interface for the drawer audit trail.
// Entries are append-only.
type RegisterHistoryRepository interface {
	Create(ctx context.Context, entry *entity.RegisterHistoryEntry) error
	ListByRegisterID(ctx context.Context, registerID uuid.UUID) ([]entity.RegisterHistoryEntry, error)
}
