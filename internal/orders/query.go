package orders

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"gardemanger/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListOptions filters and pages the order history.
type ListOptions struct {
	Page    int
	PerPage int
	Status  string
}

// OrderItemView is one line of a grouped order in the query response.
type OrderItemView struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderView is one logical order: all lines sharing an order number,
// with line totals summed into a grand total.
type OrderView struct {
	ID          uint            `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Items       []OrderItemView `json:"items"`
	Total       float64         `json:"total"`
	Status      string          `json:"status"`
	OrderDate   string          `json:"orderDate"`
	Time        string          `json:"time"`
	Customer    string          `json:"customer"`
	Phone       string          `json:"phone"`
}

// Pagination describes the page window over logical orders.
type Pagination struct {
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// OrderPage is one page of grouped orders.
type OrderPage struct {
	Orders     []OrderView
	Pagination Pagination
}

// Query reads committed orders, newest first, grouped by order number.
type Query struct {
	db  *gorm.DB
	loc *time.Location
}

// NewQuery creates an order history reader rendering timestamps in the
// given local time zone.
func NewQuery(db *gorm.DB, loc *time.Location) *Query {
	return &Query{db: db, loc: loc}
}

// List returns one page of logical orders. Pagination counts distinct
// order numbers, not line rows. Zero matches yield an empty page.
func (q *Query) List(opts ListOptions) (*OrderPage, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	base := q.db.Model(&models.CustomerOrder{})
	if opts.Status != "" {
		base = base.Where("status = ?", opts.Status)
	}

	var total int
	row := base.Select("count(distinct order_number)").Row()
	if err := row.Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var numbers []string
	err := base.
		Group("order_number").
		Order("max(order_time) desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Pluck("order_number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page orders: %w", err)
	}

	orders, err := q.loadGrouped(numbers, opts.Status)
	if err != nil {
		return nil, err
	}

	pages := (total + perPage - 1) / perPage
	return &OrderPage{
		Orders: orders,
		Pagination: Pagination{
			Page:    page,
			Pages:   pages,
			PerPage: perPage,
			Total:   total,
			HasNext: page < pages,
			HasPrev: page > 1,
		},
	}, nil
}

// loadGrouped fetches the line rows for the paged order numbers and folds
// them back into one OrderView per number, preserving page order.
func (q *Query) loadGrouped(numbers []string, status string) ([]OrderView, error) {
	orders := make([]OrderView, 0, len(numbers))
	if len(numbers) == 0 {
		return orders, nil
	}

	scope := q.db.Where("order_number in (?)", numbers)
	if status != "" {
		scope = scope.Where("status = ?", status)
	}
	var rows []models.CustomerOrder
	if err := scope.Order("order_time desc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	byNumber := make(map[string]*OrderView, len(numbers))
	for i := range rows {
		r := rows[i]
		view, ok := byNumber[r.OrderNumber]
		if !ok {
			local := r.OrderTime.In(q.loc)
			view = &OrderView{
				ID:          r.ID,
				OrderNumber: r.OrderNumber,
				Items:       []OrderItemView{},
				Status:      r.Status,
				OrderDate:   local.Format("2006-01-02"),
				Time:        local.Format("15:04:05"),
				Customer:    r.CustomerName,
				Phone:       r.CustomerPhone,
			}
			byNumber[r.OrderNumber] = view
		}
		view.Items = append(view.Items, OrderItemView{
			Name:     r.MenuItemName,
			Quantity: r.Quantity,
			Price:    r.TotalPrice,
		})
		view.Total += r.TotalPrice
	}

	for _, number := range numbers {
		if view, ok := byNumber[number]; ok {
			orders = append(orders, *view)
		}
	}
	return orders, nil
}
