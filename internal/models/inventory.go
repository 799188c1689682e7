package models

import (
	"github.com/jinzhu/gorm"
)

// InventoryItem tracks on-hand stock for one ingredient, in that
// ingredient's canonical unit. Quantity must never go negative after a
// committed order.
type InventoryItem struct {
	gorm.Model
	IngredientID uint    `gorm:"unique_index;not null" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
}

func (InventoryItem) TableName() string {
	return "inventory_item"
}
