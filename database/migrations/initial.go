package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_restaurants_table", &CreateRestaurantsTable{})
	migration.Register("20260101000002_create_categories_table", &CreateCategoriesTable{})
	migration.Register("20260101000003_create_menu_items_table", &CreateMenuItemsTable{})
}

// -------- 0000: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0001: restaurants --------

type CreateRestaurantsTable struct{}

func (m *CreateRestaurantsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Restaurant{})
}

func (m *CreateRestaurantsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("restaurants")
}

// -------- 0002: categories --------

type CreateCategoriesTable struct{}

func (m *CreateCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *CreateCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

// -------- 0003: menu_items --------

type CreateMenuItemsTable struct{}

func (m *CreateMenuItemsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.MenuItem{})
}

func (m *CreateMenuItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("menu_items")
}
