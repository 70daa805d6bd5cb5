package repository

import (
	"context"

	"github.com/mwenda/sokopos-api/internal/domain/entity"
)

// SettingsRepository defines the interface for store settings. The core only
// reads settings; Get creates the default row when none exists.
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.StoreSettings, error)
}
