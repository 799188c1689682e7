// Package orders implements the order placement workflow: aggregate
// ingredient requirements, validate stock under lock, and commit order,
// inventory, and usage writes as one transaction.
package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/jinzhu/gorm"

	"gardemanger/internal/models"
	"gardemanger/internal/units"
)

// quantityEpsilon absorbs float drift when comparing converted
// requirements against stock.
const quantityEpsilon = 1e-9

// LineItem is one requested (menu item, quantity) pair.
type LineItem struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

// PlaceOrderRequest is the input to PlaceOrder. Customer fields are
// optional reporting metadata.
type PlaceOrderRequest struct {
	Items         []LineItem `json:"items"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
}

// ReceiptItem echoes one committed order line.
type ReceiptItem struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// DeductedIngredient reports one inventory decrement, in the ingredient's
// canonical unit.
type DeductedIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Receipt summarizes a committed order.
type Receipt struct {
	OrderNumber         string               `json:"order_number"`
	Items               []ReceiptItem        `json:"items"`
	TotalAmount         float64              `json:"total_amount"`
	OrderTime           time.Time            `json:"order_time"`
	IngredientsDeducted []DeductedIngredient `json:"ingredients_deducted"`
}

// Publisher receives an event for every committed order.
type Publisher interface {
	Publish(event interface{})
}

// Recorder receives order outcome and inventory level observations.
type Recorder interface {
	OrderCommitted(total float64, duration time.Duration)
	OrderRejected(reason string)
	SetInventoryLevel(ingredient string, quantity float64)
}

// Processor runs the three-phase order workflow. A single Processor must
// be shared by all request handlers so its ingredient locks serialize
// concurrent orders that touch the same stock.
type Processor struct {
	db    *gorm.DB
	locks *lockTable
	loc   *time.Location

	// Now is the commit-time clock, overridable in tests.
	Now func() time.Time
	// Publisher, when set, is notified of committed orders.
	Publisher Publisher
	// Recorder, when set, receives metrics observations.
	Recorder Recorder
}

// NewProcessor creates an order processor stamping orders in the given
// local time zone.
func NewProcessor(db *gorm.DB, loc *time.Location) *Processor {
	return &Processor{
		db:    db,
		locks: newLockTable(),
		loc:   loc,
		Now:   time.Now,
	}
}

// requirement is the aggregated need for one ingredient across the whole
// order, in the ingredient's canonical unit.
type requirement struct {
	ingredient models.Ingredient
	total      float64
}

// usageKey identifies one (ingredient, menu item) consumption pair for the
// usage ledger.
type usageKey struct {
	ingredientID uint
	menuItemID   uint
}

// PlaceOrder validates the requested line items, verifies stock for every
// aggregated ingredient, and commits order rows, inventory decrements, and
// usage rows atomically. On any failure the database is left unchanged.
func (p *Processor) PlaceOrder(req PlaceOrderRequest) (*Receipt, error) {
	started := time.Now()

	if err := p.validateRequest(req); err != nil {
		p.rejected("invalid_request")
		return nil, err
	}

	menuItems, requirements, usage, err := p.aggregate(req)
	if err != nil {
		p.rejected(rejectionReason(err))
		return nil, err
	}

	ids := make([]uint, 0, len(requirements))
	for id := range requirements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Hold every touched ingredient across validate and commit so no
	// concurrent order can pass validation against stock this one is
	// about to consume.
	release := p.locks.acquire(ids)
	defer release()

	receipt, err := p.commit(req, menuItems, requirements, usage, ids)
	if err != nil {
		p.rejected(rejectionReason(err))
		return nil, err
	}

	if p.Recorder != nil {
		p.Recorder.OrderCommitted(receipt.TotalAmount, time.Since(started))
	}
	if p.Publisher != nil {
		p.Publisher.Publish(map[string]interface{}{
			"type":         "order_committed",
			"order_number": receipt.OrderNumber,
			"total_amount": receipt.TotalAmount,
			"items":        len(receipt.Items),
			"order_time":   receipt.OrderTime,
		})
	}
	return receipt, nil
}

func (p *Processor) validateRequest(req PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return &ValidationError{Message: "order must contain at least one item"}
	}
	for i, item := range req.Items {
		if item.MenuItemID == 0 {
			return &ValidationError{Message: fmt.Sprintf("item %d: menu_item_id is required", i+1)}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Message: fmt.Sprintf("item %d: quantity must be positive", i+1)}
		}
	}
	return nil
}

// aggregate resolves every line item and sums per-ingredient requirements,
// converted to each ingredient's canonical unit before accumulation so
// mixed recipe units across menu items stay well-defined.
func (p *Processor) aggregate(req PlaceOrderRequest) (map[uint]models.MenuItem, map[uint]*requirement, map[usageKey]float64, error) {
	menuItems := make(map[uint]models.MenuItem)
	requirements := make(map[uint]*requirement)
	usage := make(map[usageKey]float64)
	ingredients := make(map[uint]models.Ingredient)

	for _, line := range req.Items {
		item, ok := menuItems[line.MenuItemID]
		if !ok {
			if err := p.db.First(&item, line.MenuItemID).Error; err != nil {
				if gorm.IsRecordNotFoundError(err) {
					return nil, nil, nil, &NotFoundError{Kind: "menu item", ID: line.MenuItemID}
				}
				return nil, nil, nil, fmt.Errorf("failed to load menu item %d: %w", line.MenuItemID, err)
			}
			menuItems[line.MenuItemID] = item
		}

		var recipe []models.Recipe
		if err := p.db.Where("menu_item_id = ?", line.MenuItemID).Find(&recipe).Error; err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load recipe for menu item %d: %w", line.MenuItemID, err)
		}

		for _, rl := range recipe {
			ing, ok := ingredients[rl.IngredientID]
			if !ok {
				if err := p.db.First(&ing, rl.IngredientID).Error; err != nil {
					if gorm.IsRecordNotFoundError(err) {
						return nil, nil, nil, &NotFoundError{Kind: "ingredient", ID: rl.IngredientID}
					}
					return nil, nil, nil, fmt.Errorf("failed to load ingredient %d: %w", rl.IngredientID, err)
				}
				ingredients[rl.IngredientID] = ing
			}

			if !units.Compatible(rl.RecipeUnit, ing.Unit) {
				return nil, nil, nil, &ValidationError{Message: fmt.Sprintf(
					"recipe for %q uses %s of %s, inventory tracks %s: incompatible units",
					item.Name, rl.RecipeUnit, ing.Name, ing.Unit)}
			}

			converted := units.Convert(rl.QuantityPerUnit*float64(line.Quantity), rl.RecipeUnit, ing.Unit)
			r, ok := requirements[rl.IngredientID]
			if !ok {
				r = &requirement{ingredient: ing}
				requirements[rl.IngredientID] = r
			}
			r.total += converted
			usage[usageKey{rl.IngredientID, line.MenuItemID}] += converted
		}
	}

	return menuItems, requirements, usage, nil
}

// commit re-validates stock from post-lock quantities inside one
// transaction, then writes order rows, inventory decrements, and usage
// rows. Any error rolls everything back.
func (p *Processor) commit(req PlaceOrderRequest, menuItems map[uint]models.MenuItem,
	requirements map[uint]*requirement, usage map[usageKey]float64, ids []uint,
) (*Receipt, error) {
	tx := p.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	// Validate against quantities read after the locks were taken.
	onHand := make(map[uint]float64, len(ids))
	for _, id := range ids {
		r := requirements[id]
		var inv models.InventoryItem
		err := tx.Where("ingredient_id = ?", id).First(&inv).Error
		if gorm.IsRecordNotFoundError(err) {
			return nil, &InsufficientStockError{
				Ingredient: r.ingredient.Name,
				Required:   r.total,
				Available:  0,
				Unit:       r.ingredient.Unit,
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read inventory for ingredient %d: %w", id, err)
		}
		if inv.Quantity+quantityEpsilon < r.total {
			return nil, &InsufficientStockError{
				Ingredient: r.ingredient.Name,
				Required:   r.total,
				Available:  inv.Quantity,
				Unit:       r.ingredient.Unit,
			}
		}
		onHand[id] = inv.Quantity
	}

	now := p.Now().In(p.loc)
	number, err := generateOrderNumber(now)
	if err != nil {
		return nil, err
	}
	dayOfWeek := now.Weekday().String()
	mealType := string(models.MealTypeAt(now))

	receipt := &Receipt{
		OrderNumber: number,
		OrderTime:   now,
		Items:       make([]ReceiptItem, 0, len(req.Items)),
	}

	for _, line := range req.Items {
		item := menuItems[line.MenuItemID]
		total := item.Price * float64(line.Quantity)
		row := models.CustomerOrder{
			OrderNumber:   number,
			MenuItemID:    item.ID,
			MenuItemName:  item.Name,
			Quantity:      line.Quantity,
			UnitPrice:     item.Price,
			TotalPrice:    total,
			OrderTime:     now,
			DayOfWeek:     dayOfWeek,
			MealType:      mealType,
			Status:        string(models.OrderStatusCompleted),
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to create order line: %w", err)
		}
		receipt.Items = append(receipt.Items, ReceiptItem{
			Name:       item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  item.Price,
			TotalPrice: total,
		})
		receipt.TotalAmount += total
	}

	for _, id := range ids {
		r := requirements[id]
		res := tx.Model(&models.InventoryItem{}).
			Where("ingredient_id = ?", id).
			Update("quantity", gorm.Expr("quantity - ?", r.total))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to decrement inventory for %s: %w", r.ingredient.Name, res.Error)
		}
		if res.RowsAffected != 1 {
			return nil, fmt.Errorf("inventory row for %s vanished mid-commit", r.ingredient.Name)
		}
		receipt.IngredientsDeducted = append(receipt.IngredientsDeducted, DeductedIngredient{
			Name:     r.ingredient.Name,
			Quantity: r.total,
			Unit:     r.ingredient.Unit,
		})
	}

	for key, used := range usage {
		row := models.IngredientUsage{
			IngredientID: key.ingredientID,
			MenuItemID:   key.menuItemID,
			OrderNumber:  number,
			QuantityUsed: used,
			Unit:         requirements[key.ingredientID].ingredient.Unit,
			UsedAt:       now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to record ingredient usage: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	committed = true

	if p.Recorder != nil {
		for _, id := range ids {
			r := requirements[id]
			p.Recorder.SetInventoryLevel(r.ingredient.Name, onHand[id]-r.total)
		}
	}
	return receipt, nil
}

func (p *Processor) rejected(reason string) {
	if p.Recorder != nil {
		p.Recorder.OrderRejected(reason)
	}
}

func rejectionReason(err error) string {
	switch err.(type) {
	case *ValidationError:
		return "invalid_request"
	case *NotFoundError:
		return "not_found"
	case *InsufficientStockError:
		return "insufficient_stock"
	default:
		return "internal"
	}
}

// generateOrderNumber builds an ORD-<YYYYMMDD>-<8 hex> identifier from the
// commit timestamp and a random suffix.
func generateOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), hex.EncodeToString(suffix)), nil
}
