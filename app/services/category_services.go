package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/app/repositories"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/optional"
)

const msgCategoryNotFound = "Category not found"

type CreateCategoryInput struct {
	Name        string  `json:"name"        validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"nullable,max=2000"`
}

type UpdateCategoryInput struct {
	Name        optional.Value[string] `json:"name"        validate:"min=1,max=255"`
	Description optional.Value[string] `json:"description" validate:"nullable,max=2000"`
}

type ReorderCategoriesInput struct {
	CategoryIDs []string `json:"categoryIds" validate:"required,min=1"`
}

type CategoryService struct {
	restaurants *RestaurantService
	categories  *repositories.CategoryRepository
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{
		restaurants: NewRestaurantService(db),
		categories:  repositories.NewCategoryRepository(db),
	}
}

func (s *CategoryService) find(ctx context.Context, userID, id string) (*models.Category, error) {
	cat, err := s.categories.FindOwned(ctx, id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cat, nil
}

// Create appends a category to an owned restaurant.
func (s *CategoryService) Create(ctx context.Context, userID, restaurantID string, in CreateCategoryInput) (*models.Category, error) {
	rest, err := s.restaurants.Owned(ctx, userID, restaurantID)
	if err != nil {
		return nil, err
	}

	cat := &models.Category{
		Name:         strings.TrimSpace(in.Name),
		Description:  textPtr(in.Description),
		RestaurantID: rest.ID,
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, apperr.Internal(err)
	}
	return cat, nil
}

// Update applies a partial update to an owned category.
func (s *CategoryService) Update(ctx context.Context, userID, id string, in UpdateCategoryInput) (*models.Category, error) {
	cat, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if v, ok := in.Name.Get(); ok {
		changes["name"] = strings.TrimSpace(v)
	}
	if in.Description.IsSet() {
		changes["description"] = nullableText(in.Description)
	}
	if len(changes) > 0 {
		if err := s.categories.Update(ctx, cat.ID, changes); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	return s.find(ctx, userID, id)
}

// Delete removes an owned category and its items.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	cat, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, cat.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Reorder writes order = position for each id atomically.
func (s *CategoryService) Reorder(ctx context.Context, userID string, in ReorderCategoriesInput) error {
	if err := checkUnique("categoryIds", in.CategoryIDs); err != nil {
		return err
	}
	err := s.categories.Reorder(ctx, userID, in.CategoryIDs)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// checkUnique rejects id lists that name the same record twice.
func checkUnique(field string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			msg := "The " + field + " field must not contain duplicates."
			return apperr.Validation(msg, map[string]string{field: msg})
		}
		seen[id] = struct{}{}
	}
	return nil
}
