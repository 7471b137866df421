package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/optional"
)

// Demo account created by SeedDemo.
const (
	DemoEmail    = "demo@qrmenu.test"
	DemoPassword = "secret1"
)

func init() {
	Register("demo", SeedDemo)
}

type demoItem struct {
	name      string
	price     float64
	available bool
}

var demoMenu = []struct {
	category string
	items    []demoItem
}{
	{"Ana Yemekler", []demoItem{{"Köfte", 45, true}, {"İskender", 120, true}, {"Mantı", 95, false}}},
	{"Tatlılar", []demoItem{{"Baklava", 80, true}, {"Künefe", 90, true}}},
	{"İçecekler", []demoItem{{"Ayran", 12.5, true}, {"Türk Kahvesi", 30, true}}},
}

// SeedDemo creates a demo owner with one fully stocked restaurant. It goes
// through the services so slugs and ordering are assigned exactly as for API
// clients. Running it twice is a no-op.
func SeedDemo(ctx context.Context, db *gorm.DB) error {
	var existing int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", DemoEmail).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	user, err := services.NewAuthService(db).Register(ctx, services.RegisterInput{
		Name: "Demo Owner", Email: DemoEmail, Password: DemoPassword,
	})
	if err != nil {
		return err
	}

	desc := "Ev yapımı lezzetler"
	rest, err := services.NewRestaurantService(db).Create(ctx, user.ID, services.CreateRestaurantInput{
		Name:        "Demo Lokanta",
		Description: &desc,
	})
	if err != nil {
		return err
	}

	categories := services.NewCategoryService(db)
	items := services.NewItemService(db)
	for _, section := range demoMenu {
		cat, err := categories.Create(ctx, user.ID, rest.ID, services.CreateCategoryInput{Name: section.category})
		if err != nil {
			return err
		}
		for _, it := range section.items {
			item, err := items.Create(ctx, user.ID, cat.ID, services.CreateItemInput{Name: it.name, Price: it.price})
			if err != nil {
				return err
			}
			if it.available {
				continue
			}
			_, err = items.Update(ctx, user.ID, item.ID, services.UpdateItemInput{IsAvailable: optional.Of(false)})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
