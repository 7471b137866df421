package models

// User is a restaurant owner account.
type User struct {
	Base
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised

	Restaurants []Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
