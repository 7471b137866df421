// Package repositories holds the GORM queries behind the services. Every
// owner-scoped lookup joins up to restaurants.user_id so a record that exists
// but belongs to someone else is indistinguishable from a missing one.
package repositories

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row visible to the caller.
var ErrNotFound = errors.New("repositories: record not found")

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// nextOrder is max(sort_order)+1 within the parent scope, or 0 for an empty
// scope. Gaps left by deletes are kept.
func nextOrder(tx *gorm.DB, model interface{}, parentColumn, parentID string) (int, error) {
	var max sql.NullInt64
	err := tx.Model(model).
		Select("MAX(sort_order)").
		Where(parentColumn+" = ?", parentID).
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// writeOrder assigns sort_order = index for each id.
func writeOrder(tx *gorm.DB, model interface{}, ids []string) error {
	for i, id := range ids {
		if err := tx.Model(model).Where("id = ?", id).Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func menuOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("created_at ASC")
}
