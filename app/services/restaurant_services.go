package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/app/repositories"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/optional"
)

const (
	msgRestaurantNotFound = "Restaurant not found"
	msgSlugTaken          = "Slug is already taken"
)

type CreateRestaurantInput struct {
	Name         string  `json:"name"         validate:"required,min=2,max=255"`
	Description  *string `json:"description"  validate:"nullable,max=2000"`
	Address      *string `json:"address"      validate:"nullable,max=500"`
	Phone        *string `json:"phone"        validate:"nullable,max=50"`
	Logo         *string `json:"logo"         validate:"nullable,url,max=2048"`
	PrimaryColor *string `json:"primaryColor" validate:"nullable,hexcolor"`
}

// UpdateRestaurantInput is a partial update: absent fields are untouched,
// null clears a nullable column.
type UpdateRestaurantInput struct {
	Name         optional.Value[string] `json:"name"         validate:"min=2,max=255"`
	Slug         optional.Value[string] `json:"slug"         validate:"min=1,max=255"`
	Description  optional.Value[string] `json:"description"  validate:"nullable,max=2000"`
	Address      optional.Value[string] `json:"address"      validate:"nullable,max=500"`
	Phone        optional.Value[string] `json:"phone"        validate:"nullable,max=50"`
	Logo         optional.Value[string] `json:"logo"         validate:"nullable,url,max=2048"`
	PrimaryColor optional.Value[string] `json:"primaryColor" validate:"hexcolor"`
}

type RestaurantService struct {
	restaurants *repositories.RestaurantRepository
	now         func() time.Time
}

func NewRestaurantService(db *gorm.DB) *RestaurantService {
	return &RestaurantService{
		restaurants: repositories.NewRestaurantRepository(db),
		now:         time.Now,
	}
}

// List returns the caller's restaurants, newest first, with ordered
// categories and items.
func (s *RestaurantService) List(ctx context.Context, userID string) ([]models.Restaurant, error) {
	list, err := s.restaurants.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

// Get returns one owned restaurant with its menu tree.
func (s *RestaurantService) Get(ctx context.Context, userID, id string) (*models.Restaurant, error) {
	return s.find(ctx, userID, id, true)
}

// Owned returns an owned restaurant without loading its menu.
func (s *RestaurantService) Owned(ctx context.Context, userID, id string) (*models.Restaurant, error) {
	return s.find(ctx, userID, id, false)
}

func (s *RestaurantService) find(ctx context.Context, userID, id string, tree bool) (*models.Restaurant, error) {
	rest, err := s.restaurants.FindOwned(ctx, id, userID, tree)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(msgRestaurantNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rest, nil
}

// Create stores a restaurant for userID and assigns its slug.
func (s *RestaurantService) Create(ctx context.Context, userID string, in CreateRestaurantInput) (*models.Restaurant, error) {
	slug, err := s.assignSlug(ctx, in.Name)
	if err != nil {
		return nil, err
	}

	rest := &models.Restaurant{
		Name:         strings.TrimSpace(in.Name),
		Slug:         slug,
		Description:  textPtr(in.Description),
		Address:      textPtr(in.Address),
		Phone:        textPtr(in.Phone),
		Logo:         textPtr(in.Logo),
		PrimaryColor: models.DefaultPrimaryColor,
		UserID:       userID,
	}
	if c := textPtr(in.PrimaryColor); c != nil {
		rest.PrimaryColor = strings.ToLower(*c)
	}

	if err := s.restaurants.Create(ctx, rest); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(msgSlugTaken)
		}
		return nil, apperr.Internal(err)
	}
	return rest, nil
}

// assignSlug slugifies name and, when the result is taken, makes a single
// attempt at disambiguation with a time-based suffix.
func (s *RestaurantService) assignSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = fallbackSlug
	}

	taken, err := s.restaurants.SlugTaken(ctx, base, "")
	if err != nil {
		return "", apperr.Internal(err)
	}
	if !taken {
		return base, nil
	}
	return base + collisionSuffix(s.now()), nil
}

// Update applies a partial update to an owned restaurant. A new slug is
// normalised and rejected if another restaurant already uses it.
func (s *RestaurantService) Update(ctx context.Context, userID, id string, in UpdateRestaurantInput) (*models.Restaurant, error) {
	rest, err := s.find(ctx, userID, id, false)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if v, ok := in.Name.Get(); ok {
		changes["name"] = strings.TrimSpace(v)
	}
	if v, ok := in.Slug.Get(); ok {
		slug := Slugify(v)
		if slug == "" {
			return nil, apperr.Validation("The slug must contain letters or numbers.",
				map[string]string{"slug": "The slug must contain letters or numbers."})
		}
		if slug != rest.Slug {
			taken, err := s.restaurants.SlugTaken(ctx, slug, rest.ID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			if taken {
				return nil, apperr.Conflict(msgSlugTaken)
			}
			changes["slug"] = slug
		}
	}
	if in.Description.IsSet() {
		changes["description"] = nullableText(in.Description)
	}
	if in.Address.IsSet() {
		changes["address"] = nullableText(in.Address)
	}
	if in.Phone.IsSet() {
		changes["phone"] = nullableText(in.Phone)
	}
	if in.Logo.IsSet() {
		changes["logo"] = nullableText(in.Logo)
	}
	if v, ok := in.PrimaryColor.Get(); ok {
		changes["primary_color"] = strings.ToLower(v)
	}

	if len(changes) > 0 {
		if err := s.restaurants.Update(ctx, rest.ID, changes); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict(msgSlugTaken)
			}
			return nil, apperr.Internal(err)
		}
	}
	return s.find(ctx, userID, id, false)
}

// Delete removes an owned restaurant with its categories and items.
func (s *RestaurantService) Delete(ctx context.Context, userID, id string) error {
	rest, err := s.find(ctx, userID, id, false)
	if err != nil {
		return err
	}
	if err := s.restaurants.Delete(ctx, rest.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
