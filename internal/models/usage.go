package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// IngredientUsage is an append-only audit row written alongside each
// inventory decrement. QuantityUsed is in the ingredient's canonical unit,
// so the consumption ledger can be reconstructed without unit conversion.
type IngredientUsage struct {
	gorm.Model
	IngredientID uint      `gorm:"index;not null" json:"ingredient_id"`
	MenuItemID   uint      `gorm:"index;not null" json:"menu_item_id"`
	OrderNumber  string    `gorm:"index" json:"order_number"`
	QuantityUsed float64   `gorm:"not null" json:"quantity_used"`
	Unit         string    `json:"unit"`
	UsedAt       time.Time `json:"used_at"`
}

func (IngredientUsage) TableName() string {
	return "ingredient_usage"
}
