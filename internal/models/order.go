package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// CustomerOrder is one line of a checkout. Every line of the same checkout
// shares an OrderNumber. Rows are created by the order processor and never
// mutated afterwards.
type CustomerOrder struct {
	gorm.Model
	OrderNumber   string    `gorm:"index;not null" json:"order_number"`
	MenuItemID    uint      `gorm:"index;not null" json:"menu_item_id"`
	MenuItemName  string    `json:"menu_item_name"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	TotalPrice    float64   `json:"total_price"`
	OrderTime     time.Time `gorm:"index" json:"order_time"`
	DayOfWeek     string    `json:"day_of_week"`
	MealType      string    `json:"meal_type"`
	Status        string    `gorm:"index" json:"status"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
}

func (CustomerOrder) TableName() string {
	return "customer_order"
}

// OrderStatus represents the possible states of an order line.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// MealType buckets an order's wall-clock time for reporting.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypeAt returns the meal bucket for a local wall-clock time:
// breakfast 06:00-10:59, lunch 11:00-15:59, dinner 16:00-20:59, snack
// otherwise.
func MealTypeAt(t time.Time) MealType {
	switch h := t.Hour(); {
	case h >= 6 && h < 11:
		return MealBreakfast
	case h >= 11 && h < 16:
		return MealLunch
	case h >= 16 && h < 21:
		return MealDinner
	default:
		return MealSnack
	}
}
