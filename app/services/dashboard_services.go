package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/repositories"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
)

// DashboardStats are the landing page counters of an owner.
type DashboardStats struct {
	Restaurants int64 `json:"restaurants"`
	Categories  int64 `json:"categories"`
	Items       int64 `json:"items"`
}

type DashboardService struct {
	restaurants *repositories.RestaurantRepository
	categories  *repositories.CategoryRepository
	items       *repositories.ItemRepository
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		restaurants: repositories.NewRestaurantRepository(db),
		categories:  repositories.NewCategoryRepository(db),
		items:       repositories.NewItemRepository(db),
	}
}

func (s *DashboardService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)
	if stats.Restaurants, err = s.restaurants.CountByOwner(ctx, userID); err != nil {
		return nil, apperr.Internal(err)
	}
	if stats.Categories, err = s.categories.CountByOwner(ctx, userID); err != nil {
		return nil, apperr.Internal(err)
	}
	if stats.Items, err = s.items.CountByOwner(ctx, userID); err != nil {
		return nil, apperr.Internal(err)
	}
	return &stats, nil
}
