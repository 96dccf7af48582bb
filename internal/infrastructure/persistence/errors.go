package persistence

import (
	"errors"

	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// mapNotFound converts gorm.ErrRecordNotFound into shared.ErrNotFound
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// requireAffected turns a zero-row delete or update into shared.ErrNotFound
func requireAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
