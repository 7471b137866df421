package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
)

// ItemRepository handles database operations for MenuItem.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ownedItems scopes a query on menu_items to restaurants owned by userID.
func ownedItems(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.MenuItem{}).
		Joins("JOIN categories ON categories.id = menu_items.category_id").
		Joins("JOIN restaurants ON restaurants.id = categories.restaurant_id").
		Where("restaurants.user_id = ?", userID)
}

// FindOwned returns the item only if the root restaurant belongs to userID.
func (r *ItemRepository) FindOwned(ctx context.Context, id, userID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := ownedItems(r.db.WithContext(ctx), userID).
		Select("menu_items.*").
		Where("menu_items.id = ?", id).
		Take(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// Create appends the item at the end of its category.
func (r *ItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := nextOrder(tx, &models.MenuItem{}, "category_id", item.CategoryID)
		if err != nil {
			return err
		}
		item.Order = order
		return tx.Create(item).Error
	})
}

// Update writes the given column changes.
func (r *ItemRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).Updates(changes).Error
}

// Delete removes one item.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{}).Error
}

// Reorder sets sort_order = index for every id in one transaction, rejecting
// the whole list with ErrNotFound if any id is not owned by userID.
func (r *ItemRepository) Reorder(ctx context.Context, userID string, ids []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		err := ownedItems(tx, userID).
			Where("menu_items.id IN ?", ids).
			Count(&owned).Error
		if err != nil {
			return err
		}
		if owned != int64(len(ids)) {
			return ErrNotFound
		}
		return writeOrder(tx, &models.MenuItem{}, ids)
	})
}

// CountByOwner counts items across the owner's restaurants.
func (r *ItemRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := ownedItems(r.db.WithContext(ctx), userID).Count(&n).Error
	return n, err
}
