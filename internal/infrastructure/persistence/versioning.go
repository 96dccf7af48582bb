package persistence

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// versioned is implemented by every aggregate embedding shared.BaseAggregateRoot
type versioned interface {
	GetID() uuid.UUID
	GetVersion() int
	IncrementVersion()
	StoredVersion() int
	MarkStored(version int)
}

// RegisterVersionTracking records the loaded version on every aggregate a
// query returns, so saves can be guarded by it.
func RegisterVersionTracking(db *gorm.DB) error {
	if err := db.Callback().Query().After("gorm:after_query").
		Register("shop:track_version", trackStoredVersion); err != nil {
		return fmt.Errorf("failed to register version tracking: %w", err)
	}
	return nil
}

func trackStoredVersion(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			markStored(rv.Index(i))
		}
	case reflect.Struct:
		markStored(rv)
	}
}

func markStored(v reflect.Value) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || !v.CanAddr() {
		return
	}
	if agg, ok := v.Addr().Interface().(versioned); ok {
		agg.MarkStored(agg.GetVersion())
	}
}

// saveVersioned inserts an aggregate that was never stored, otherwise updates
// the row only while it still carries the version the aggregate was loaded
// with. Associations are left to the caller.
func saveVersioned(tx *gorm.DB, agg versioned) error {
	stored := agg.StoredVersion()
	if stored == 0 {
		if err := tx.Omit(clause.Associations).Create(agg).Error; err != nil {
			return err
		}
		agg.MarkStored(agg.GetVersion())
		return nil
	}

	for agg.GetVersion() <= stored {
		agg.IncrementVersion()
	}
	result := tx.Model(agg).
		Select("*").
		Omit(clause.Associations, "id", "created_at").
		Where("version = ?", stored).
		Updates(agg)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(agg).Where("id = ?", agg.GetID()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	agg.MarkStored(agg.GetVersion())
	return nil
}
