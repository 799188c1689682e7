// Package api wires the back-office HTTP surface.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gardemanger/internal/feed"
	"gardemanger/internal/orders"
	"gardemanger/internal/stock"
)

// BackOfficeAPI represents the main API handler for the back office.
type BackOfficeAPI struct {
	Router    *gin.Engine
	Processor *orders.Processor
	Query     *orders.Query
	Checker   *stock.Checker
	Feed      *feed.Hub

	authSecret string
}

// NewBackOfficeAPI creates the API server and registers its routes.
func NewBackOfficeAPI(processor *orders.Processor, query *orders.Query, checker *stock.Checker, hub *feed.Hub, authSecret string) *BackOfficeAPI {
	api := &BackOfficeAPI{
		Router:     gin.Default(),
		Processor:  processor,
		Query:      query,
		Checker:    checker,
		Feed:       hub,
		authSecret: authSecret,
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints.
func (b *BackOfficeAPI) setupRoutes() {
	// Health check
	b.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Garde-Manger API is running"})
	})

	// Order event feed
	b.Router.GET("/ws", func(c *gin.Context) {
		b.Feed.HandleConnection(c.Writer, c.Request)
	})

	v1 := b.Router.Group("/api/v1")
	v1.Use(AuthMiddleware(b.authSecret))
	{
		// Menu availability
		v1.GET("/availability", b.GetAvailability)

		// Order management
		v1.GET("/orders", b.ListOrders)
		v1.POST("/orders", b.PlaceOrder)

		// Inventory (read-only; restock lives elsewhere)
		v1.GET("/inventory", b.GetInventory)
	}
}

// GetAvailability reports per-menu-item availability.
func (b *BackOfficeAPI) GetAvailability(c *gin.Context) {
	report, err := b.Checker.CheckAll()
	if err != nil {
		respondInternal(c, "Failed to check availability", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// GetInventory returns current on-hand quantities per ingredient.
func (b *BackOfficeAPI) GetInventory(c *gin.Context) {
	snapshot, err := b.Checker.Snapshot()
	if err != nil {
		respondInternal(c, "Failed to read inventory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snapshot})
}
