package model

import "time"

type MenuCategory string

const (
	MenuCategoryBreakfast MenuCategory = "Breakfast"
	MenuCategoryLunch     MenuCategory = "Lunch"
	MenuCategoryDinner    MenuCategory = "Dinner"
	MenuCategorySnacks    MenuCategory = "Snacks"
	MenuCategoryBeverages MenuCategory = "Beverages"
	MenuCategoryOther     MenuCategory = "Other"
)

func (c MenuCategory) Valid() bool {
	switch c {
	case MenuCategoryBreakfast, MenuCategoryLunch, MenuCategoryDinner,
		MenuCategorySnacks, MenuCategoryBeverages, MenuCategoryOther:
		return true
	}
	return false
}

type MenuItem struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	CanteenRef  string       `gorm:"type:varchar(50);not null;index" json:"canteen_id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Price       int64        `gorm:"not null" json:"price"`
	Available   bool         `gorm:"not null;default:true" json:"available"`
	Category    MenuCategory `gorm:"type:varchar(20);not null;default:'Other'" json:"category"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
