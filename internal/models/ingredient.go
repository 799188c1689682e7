package models

import (
	"github.com/jinzhu/gorm"
)

// Ingredient is immutable reference data describing a raw ingredient and
// the canonical unit its stock is tracked in.
type Ingredient struct {
	gorm.Model
	Name string `gorm:"unique_index;not null" json:"name"`
	Unit string `gorm:"not null" json:"unit"`
}

func (Ingredient) TableName() string {
	return "ingredient"
}
