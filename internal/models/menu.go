package models

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

// MenuItem represents a dish on the menu.
type MenuItem struct {
	gorm.Model
	Name  string  `gorm:"not null" json:"name"`
	Price float64 `gorm:"not null" json:"price"`
}

func (MenuItem) TableName() string {
	return "menu_item"
}

// Recipe is one bill-of-materials line: how much of an ingredient, in
// RecipeUnit, one unit of the menu item consumes.
type Recipe struct {
	gorm.Model
	MenuItemID      uint    `gorm:"index;not null" json:"menu_item_id"`
	IngredientID    uint    `gorm:"index;not null" json:"ingredient_id"`
	QuantityPerUnit float64 `gorm:"not null" json:"quantity_per_unit"`
	RecipeUnit      string  `json:"recipe_unit"`
}

func (Recipe) TableName() string {
	return "recipe"
}

// ValidateMenuItem validates a menu item before it is persisted.
func ValidateMenuItem(item *MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price <= 0 {
		return fmt.Errorf("menu item price must be greater than 0")
	}
	return nil
}
