package orders

import "fmt"

// ValidationError reports a malformed or rejected order request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports a reference to a menu item or ingredient that does
// not exist.
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InsufficientStockError rejects an order whose aggregated requirement for
// an ingredient exceeds current inventory. Quantities are in the
// ingredient's canonical unit.
type InsufficientStockError struct {
	Ingredient string
	Required   float64
	Available  float64
	Unit       string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s: need %.2f %s, have %.2f %s",
		e.Ingredient, e.Required, e.Unit, e.Available, e.Unit)
}
