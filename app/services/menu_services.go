package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/app/repositories"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/metrics"
)

// Surfaces the public menu is served on, used as the metrics label.
const (
	SurfaceREST    = "rest"
	SurfaceGraphQL = "graphql"
)

// Menu is the read-only document behind the public menu page. It never
// exposes owner data or unavailable items.
type Menu struct {
	Restaurant PublicRestaurant `json:"restaurant"`
	Categories []PublicCategory `json:"categories"`
	// Navigation lists the categories that have at least one visible item.
	Navigation []NavEntry `json:"navigation"`
	HasItems   bool       `json:"hasItems"`
}

type PublicRestaurant struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  *string `json:"description"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Logo         *string `json:"logo"`
	PrimaryColor string  `json:"primaryColor"`
}

type PublicCategory struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Order       int          `json:"order"`
	Items       []PublicItem `json:"items"`
}

type PublicItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Image       *string `json:"image"`
	Order       int     `json:"order"`
}

type NavEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MenuService struct {
	restaurants *repositories.RestaurantRepository
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{restaurants: repositories.NewRestaurantRepository(db)}
}

// Show loads the public menu for slug. Every call reads the database.
func (s *MenuService) Show(ctx context.Context, slug, surface string) (*Menu, error) {
	rest, err := s.restaurants.FindPublished(ctx, slug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(msgRestaurantNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.MenuViews.WithLabelValues(surface).Inc()
	return buildMenu(rest), nil
}

func buildMenu(rest *models.Restaurant) *Menu {
	menu := &Menu{
		Restaurant: PublicRestaurant{
			ID:           rest.ID,
			Name:         rest.Name,
			Slug:         rest.Slug,
			Description:  rest.Description,
			Address:      rest.Address,
			Phone:        rest.Phone,
			Logo:         rest.Logo,
			PrimaryColor: rest.PrimaryColor,
		},
		Categories: make([]PublicCategory, 0, len(rest.Categories)),
		Navigation: []NavEntry{},
	}

	for _, cat := range rest.Categories {
		pc := PublicCategory{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
			Order:       cat.Order,
			Items:       make([]PublicItem, 0, len(cat.Items)),
		}
		for _, item := range cat.Items {
			if !item.IsAvailable {
				continue
			}
			pc.Items = append(pc.Items, PublicItem{
				ID:          item.ID,
				Name:        item.Name,
				Description: item.Description,
				Price:       item.Price,
				Image:       item.Image,
				Order:       item.Order,
			})
		}
		if len(pc.Items) > 0 {
			menu.Navigation = append(menu.Navigation, NavEntry{ID: cat.ID, Name: cat.Name})
			menu.HasItems = true
		}
		menu.Categories = append(menu.Categories, pc)
	}
	return menu
}
