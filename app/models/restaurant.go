package models

// DefaultPrimaryColor is the brand colour of a new restaurant.
const DefaultPrimaryColor = "#f97316"

// Restaurant is a tenant-owned venue with a globally unique public slug.
type Restaurant struct {
	Base
	Name         string  `gorm:"size:255;not null" json:"name"`
	Slug         string  `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Description  *string `gorm:"type:text" json:"description"`
	Address      *string `gorm:"size:500" json:"address"`
	Phone        *string `gorm:"size:50" json:"phone"`
	Logo         *string `gorm:"size:2048" json:"logo"`
	PrimaryColor string  `gorm:"size:7;not null;default:'#f97316'" json:"primaryColor"`
	UserID       string  `gorm:"type:varchar(36);not null;index" json:"userId"`

	// Categories is only populated by queries that preload it.
	Categories []Category `gorm:"constraint:OnDelete:CASCADE" json:"categories,omitzero"`
}

// Category groups menu items inside a restaurant.
type Category struct {
	Base
	Name         string  `gorm:"size:255;not null" json:"name"`
	Description  *string `gorm:"type:text" json:"description"`
	Order        int     `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	RestaurantID string  `gorm:"type:varchar(36);not null;index" json:"restaurantId"`

	Items []MenuItem `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"items,omitzero"`
}

// MenuItem is a priced dish or drink.
type MenuItem struct {
	Base
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Image       *string `gorm:"size:2048" json:"image"`
	// No gorm default: a default tag would turn an explicit false into true
	// on insert.
	IsAvailable bool   `gorm:"not null" json:"isAvailable"`
	Order       int    `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	CategoryID  string `gorm:"type:varchar(36);not null;index" json:"categoryId"`
}

func (MenuItem) TableName() string { return "menu_items" }

// EnsureChildren turns nil child slices into empty ones so a loaded-but-empty
// relation serialises as [] rather than being omitted.
func (r *Restaurant) EnsureChildren() {
	if r.Categories == nil {
		r.Categories = []Category{}
	}
	for i := range r.Categories {
		if r.Categories[i].Items == nil {
			r.Categories[i].Items = []MenuItem{}
		}
	}
}
