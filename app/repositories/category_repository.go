package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
)

// CategoryRepository handles database operations for Category.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ownedCategories scopes a query on categories to restaurants owned by userID.
func ownedCategories(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.Category{}).
		Joins("JOIN restaurants ON restaurants.id = categories.restaurant_id").
		Where("restaurants.user_id = ?", userID)
}

// FindOwned returns the category only if its restaurant belongs to userID.
func (r *CategoryRepository) FindOwned(ctx context.Context, id, userID string) (*models.Category, error) {
	var cat models.Category
	err := ownedCategories(r.db.WithContext(ctx), userID).
		Select("categories.*").
		Where("categories.id = ?", id).
		Take(&cat).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cat, nil
}

// Create appends the category at the end of its restaurant's list.
func (r *CategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := nextOrder(tx, &models.Category{}, "restaurant_id", cat.RestaurantID)
		if err != nil {
			return err
		}
		cat.Order = order
		return tx.Create(cat).Error
	})
}

// Update writes the given column changes.
func (r *CategoryRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(changes).Error
}

// Delete removes the category and its items in one transaction.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Category{}).Error
	})
}

// Reorder sets sort_order = index for every id in one transaction. If any id
// is missing or not owned by userID nothing is written and ErrNotFound is
// returned. ids must not contain duplicates.
func (r *CategoryRepository) Reorder(ctx context.Context, userID string, ids []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		err := ownedCategories(tx, userID).
			Where("categories.id IN ?", ids).
			Count(&owned).Error
		if err != nil {
			return err
		}
		if owned != int64(len(ids)) {
			return ErrNotFound
		}
		return writeOrder(tx, &models.Category{}, ids)
	})
}

// CountByOwner counts categories across the owner's restaurants.
func (r *CategoryRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := ownedCategories(r.db.WithContext(ctx), userID).Count(&n).Error
	return n, err
}
