package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
)

// RestaurantRepository handles database operations for Restaurant.
type RestaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// withMenu preloads categories and their items in display order. When
// availableOnly is set, unavailable items are left out.
func withMenu(db *gorm.DB, availableOnly bool) *gorm.DB {
	return db.
		Preload("Categories", menuOrder).
		Preload("Categories.Items", func(db *gorm.DB) *gorm.DB {
			if availableOnly {
				db = db.Where("is_available = ?", true)
			}
			return menuOrder(db)
		})
}

// ListByOwner returns the owner's restaurants, newest first, with the full
// menu tree.
func (r *RestaurantRepository) ListByOwner(ctx context.Context, userID string) ([]models.Restaurant, error) {
	restaurants := []models.Restaurant{}
	err := withMenu(r.db.WithContext(ctx), false).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&restaurants).Error
	if err != nil {
		return nil, err
	}
	for i := range restaurants {
		restaurants[i].EnsureChildren()
	}
	return restaurants, nil
}

// FindOwned returns the restaurant only if userID owns it. The menu tree is
// loaded when withTree is set.
func (r *RestaurantRepository) FindOwned(ctx context.Context, id, userID string, withTree bool) (*models.Restaurant, error) {
	q := r.db.WithContext(ctx)
	if withTree {
		q = withMenu(q, false)
	}

	var rest models.Restaurant
	if err := q.Where("id = ? AND user_id = ?", id, userID).Take(&rest).Error; err != nil {
		return nil, notFound(err)
	}
	if withTree {
		rest.EnsureChildren()
	}
	return &rest, nil
}

// FindPublished loads the public menu for slug: ordered categories and only
// the available items.
func (r *RestaurantRepository) FindPublished(ctx context.Context, slug string) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := withMenu(r.db.WithContext(ctx), true).
		Where("slug = ?", slug).
		Take(&rest).Error
	if err != nil {
		return nil, notFound(err)
	}
	rest.EnsureChildren()
	return &rest, nil
}

// SlugTaken reports whether another restaurant than exceptID uses slug.
func (r *RestaurantRepository) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

// Create persists a new restaurant.
func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) error {
	return r.db.WithContext(ctx).Create(rest).Error
}

// Update writes the given column changes.
func (r *RestaurantRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Updates(changes).Error
}

// Delete removes the restaurant with its categories and items in one
// transaction.
func (r *RestaurantRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryIDs := tx.Model(&models.Category{}).Select("id").Where("restaurant_id = ?", id)
		if err := tx.Where("category_id IN (?)", categoryIDs).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Restaurant{}).Error
	})
}

// CountByOwner counts the owner's restaurants.
func (r *RestaurantRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
