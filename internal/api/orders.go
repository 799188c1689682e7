package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gardemanger/internal/orders"
)

// PlaceOrder handles POST /api/v1/orders.
func (b *BackOfficeAPI) PlaceOrder(c *gin.Context) {
	var req orders.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	receipt, err := b.Processor.PlaceOrder(req)
	if err != nil {
		status, message := orderErrorResponse(err)
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order_details": receipt})
}

// ListOrders handles GET /api/v1/orders.
func (b *BackOfficeAPI) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	result, err := b.Query.List(orders.ListOptions{
		Page:    page,
		PerPage: perPage,
		Status:  c.Query("status"),
	})
	if err != nil {
		respondInternal(c, "Failed to fetch orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Orders,
		"pagination": result.Pagination,
	})
}

// orderErrorResponse maps domain errors onto HTTP status and message.
// Unexpected errors surface a generic message; detail stays in the log.
func orderErrorResponse(err error) (int, string) {
	var validationErr *orders.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Error()
	}

	var notFoundErr *orders.NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound, notFoundErr.Error()
	}

	var stockErr *orders.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusBadRequest, stockErr.Error()
	}

	log.Printf("Order placement failed: %v", err)
	return http.StatusInternalServerError, "Internal server error"
}

func respondInternal(c *gin.Context, message string, err error) {
	log.Printf("%s: %v", message, err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": message})
}
