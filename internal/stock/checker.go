// Package stock reports menu-item availability against current inventory.
package stock

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"gardemanger/internal/models"
	"gardemanger/internal/units"
)

// ItemAvailability is the availability report for one menu item at a sale
// quantity of one.
type ItemAvailability struct {
	MenuItemID         uint                `json:"menu_item_id"`
	Name               string              `json:"name"`
	IsAvailable        bool                `json:"is_available"`
	MissingIngredients []MissingIngredient `json:"missing_ingredients"`
}

// MissingIngredient details one missing or insufficient ingredient.
type MissingIngredient struct {
	Name      string  `json:"name"`
	Required  float64 `json:"required"`
	Available float64 `json:"available"`
	Unit      string  `json:"unit"`
}

// Checker walks menu recipes and compares converted requirements against
// on-hand inventory. Read-only; no side effects.
type Checker struct {
	db *gorm.DB
}

// NewChecker creates an availability checker over the given database.
func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// CheckAll reports availability for every menu item.
func (c *Checker) CheckAll() ([]ItemAvailability, error) {
	var menuItems []models.MenuItem
	if err := c.db.Order("id").Find(&menuItems).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	var recipes []models.Recipe
	if err := c.db.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	recipesByItem := make(map[uint][]models.Recipe)
	for _, r := range recipes {
		recipesByItem[r.MenuItemID] = append(recipesByItem[r.MenuItemID], r)
	}

	ingredients, inventory, err := c.loadStock()
	if err != nil {
		return nil, err
	}

	results := make([]ItemAvailability, 0, len(menuItems))
	for _, item := range menuItems {
		results = append(results, c.checkItem(item, recipesByItem[item.ID], ingredients, inventory))
	}
	return results, nil
}

func (c *Checker) loadStock() (map[uint]models.Ingredient, map[uint]models.InventoryItem, error) {
	var ingredientRows []models.Ingredient
	if err := c.db.Find(&ingredientRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	ingredients := make(map[uint]models.Ingredient, len(ingredientRows))
	for _, ing := range ingredientRows {
		ingredients[ing.ID] = ing
	}

	var inventoryRows []models.InventoryItem
	if err := c.db.Find(&inventoryRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	inventory := make(map[uint]models.InventoryItem, len(inventoryRows))
	for _, inv := range inventoryRows {
		inventory[inv.IngredientID] = inv
	}

	return ingredients, inventory, nil
}

func (c *Checker) checkItem(item models.MenuItem, recipe []models.Recipe,
	ingredients map[uint]models.Ingredient, inventory map[uint]models.InventoryItem,
) ItemAvailability {
	result := ItemAvailability{
		MenuItemID:         item.ID,
		Name:               item.Name,
		IsAvailable:        true,
		MissingIngredients: []MissingIngredient{},
	}

	for _, line := range recipe {
		ing, known := ingredients[line.IngredientID]
		if !known {
			// No master data is an unavailability condition, not an error.
			result.IsAvailable = false
			result.MissingIngredients = append(result.MissingIngredients, MissingIngredient{
				Name:     fmt.Sprintf("unknown ingredient #%d", line.IngredientID),
				Required: line.QuantityPerUnit,
				Unit:     line.RecipeUnit,
			})
			continue
		}

		required := units.Convert(line.QuantityPerUnit, line.RecipeUnit, ing.Unit)
		inv, stocked := inventory[line.IngredientID]
		if !stocked || inv.Quantity < required {
			result.IsAvailable = false
			result.MissingIngredients = append(result.MissingIngredients, MissingIngredient{
				Name:      ing.Name,
				Required:  required,
				Available: inv.Quantity,
				Unit:      ing.Unit,
			})
		}
	}

	return result
}

// Snapshot returns the current on-hand quantity per ingredient name, for
// the read-only inventory listing.
func (c *Checker) Snapshot() (map[string]float64, error) {
	ingredients, inventory, err := c.loadStock()
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]float64, len(ingredients))
	for id, ing := range ingredients {
		snapshot[ing.Name] = inventory[id].Quantity
	}
	return snapshot, nil
}
