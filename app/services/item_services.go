package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/app/repositories"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/optional"
)

const msgItemNotFound = "Item not found"

// Prices are capped at the largest value a decimal(10,2) column holds.
type CreateItemInput struct {
	Name        string  `json:"name"        validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"nullable,max=2000"`
	Price       float64 `json:"price"       validate:"gte=0,lte=99999999.99"`
	Image       *string `json:"image"       validate:"nullable,url,max=2048"`
}

type UpdateItemInput struct {
	Name        optional.Value[string]  `json:"name"        validate:"min=1,max=255"`
	Description optional.Value[string]  `json:"description" validate:"nullable,max=2000"`
	Price       optional.Value[float64] `json:"price"       validate:"gte=0,lte=99999999.99"`
	Image       optional.Value[string]  `json:"image"       validate:"nullable,url,max=2048"`
	IsAvailable optional.Value[bool]    `json:"isAvailable" validate:"required"`
}

type ReorderItemsInput struct {
	ItemIDs []string `json:"itemIds" validate:"required,min=1"`
}

type ItemService struct {
	categories *CategoryService
	items      *repositories.ItemRepository
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{
		categories: NewCategoryService(db),
		items:      repositories.NewItemRepository(db),
	}
}

// roundPrice keeps two decimals so the value read back equals the one sent.
func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

func (s *ItemService) find(ctx context.Context, userID, id string) (*models.MenuItem, error) {
	item, err := s.items.FindOwned(ctx, id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(msgItemNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return item, nil
}

// Create appends an available item to an owned category.
func (s *ItemService) Create(ctx context.Context, userID, categoryID string, in CreateItemInput) (*models.MenuItem, error) {
	cat, err := s.categories.find(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: textPtr(in.Description),
		Price:       roundPrice(in.Price),
		Image:       textPtr(in.Image),
		IsAvailable: true,
		CategoryID:  cat.ID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperr.Internal(err)
	}
	return item, nil
}

// Update applies a partial update to an owned item.
func (s *ItemService) Update(ctx context.Context, userID, id string, in UpdateItemInput) (*models.MenuItem, error) {
	item, err := s.find(ctx, userID, id)
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
	if v, ok := in.Price.Get(); ok {
		changes["price"] = roundPrice(v)
	}
	if in.Image.IsSet() {
		changes["image"] = nullableText(in.Image)
	}
	if v, ok := in.IsAvailable.Get(); ok {
		changes["is_available"] = v
	}
	if len(changes) > 0 {
		if err := s.items.Update(ctx, item.ID, changes); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	return s.find(ctx, userID, id)
}

// Delete removes an owned item.
func (s *ItemService) Delete(ctx context.Context, userID, id string) error {
	item, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Reorder writes order = position for each id atomically.
func (s *ItemService) Reorder(ctx context.Context, userID string, in ReorderItemsInput) error {
	if err := checkUnique("itemIds", in.ItemIDs); err != nil {
		return err
	}
	err := s.items.Reorder(ctx, userID, in.ItemIDs)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(msgItemNotFound)
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
