package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gardemanger/internal/api"
	"gardemanger/internal/database"
	"gardemanger/internal/feed"
	"gardemanger/internal/models"
	"gardemanger/internal/orders"
	"gardemanger/internal/stock"
)

func newTestServer(t *testing.T, authSecret string) (*api.BackOfficeAPI, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	loc := time.FixedZone("EST", -5*3600)
	server := api.NewBackOfficeAPI(
		orders.NewProcessor(db, loc),
		orders.NewQuery(db, loc),
		stock.NewChecker(db),
		feed.NewHub(),
		authSecret,
	)
	return server, db
}

func seedBurger(t *testing.T, db *gorm.DB) models.MenuItem {
	t.Helper()

	flour := models.Ingredient{Name: "flour", Unit: "kg"}
	require.NoError(t, db.Create(&flour).Error)
	require.NoError(t, db.Create(&models.InventoryItem{IngredientID: flour.ID, Quantity: 5}).Error)

	burger := models.MenuItem{Name: "burger", Price: 8.5}
	require.NoError(t, db.Create(&burger).Error)
	require.NoError(t, db.Create(&models.Recipe{
		MenuItemID:      burger.ID,
		IngredientID:    flour.ID,
		QuantityPerUnit: 200,
		RecipeUnit:      "g",
	}).Error)
	return burger
}

func doJSON(t *testing.T, server *api.BackOfficeAPI, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	response := map[string]interface{}{}
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t, "")

	w, response := doJSON(t, server, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", response["status"])
}

func TestPlaceOrderEndpoint(t *testing.T) {
	server, db := newTestServer(t, "")
	burger := seedBurger(t, db)

	w, response := doJSON(t, server, "POST", "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": burger.ID, "quantity": 10},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, response["success"])

	details, ok := response["order_details"].(map[string]interface{})
	require.True(t, ok)
	assert.Regexp(t, `^ORD-\d{8}-[0-9a-f]{8}$`, details["order_number"])
	assert.InDelta(t, 85.0, details["total_amount"].(float64), 1e-9)

	deducted, ok := details["ingredients_deducted"].([]interface{})
	require.True(t, ok)
	require.Len(t, deducted, 1)
	first := deducted[0].(map[string]interface{})
	assert.Equal(t, "flour", first["name"])
	assert.InDelta(t, 2.0, first["quantity"].(float64), 1e-9)
}

func TestPlaceOrderEndpointInsufficientStock(t *testing.T) {
	server, db := newTestServer(t, "")
	burger := seedBurger(t, db)

	w, response := doJSON(t, server, "POST", "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": burger.ID, "quantity": 30},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, response["success"])
	assert.Contains(t, response["message"], "insufficient stock of flour")
}

func TestPlaceOrderEndpointUnknownMenuItem(t *testing.T) {
	server, db := newTestServer(t, "")
	seedBurger(t, db)

	w, response := doJSON(t, server, "POST", "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": 999, "quantity": 1},
		},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, response["success"])
}

func TestPlaceOrderEndpointBadBody(t *testing.T) {
	server, _ := newTestServer(t, "")

	req, err := http.NewRequest("POST", "/api/v1/orders", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	server, db := newTestServer(t, "")
	seedBurger(t, db)

	w, response := doJSON(t, server, "GET", "/api/v1/availability", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["success"])

	data, ok := response["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	item := data[0].(map[string]interface{})
	assert.Equal(t, "burger", item["name"])
	assert.Equal(t, true, item["is_available"])
}

func TestListOrdersEndpointPagination(t *testing.T) {
	server, db := newTestServer(t, "")
	base := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		require.NoError(t, db.Create(&models.CustomerOrder{
			OrderNumber:  fmt.Sprintf("ORD-20260501-%08x", i),
			MenuItemName: "burger",
			Quantity:     1,
			TotalPrice:   8.5,
			OrderTime:    base.Add(-time.Duration(i) * time.Minute),
			Status:       "completed",
		}).Error)
	}

	w, response := doJSON(t, server, "GET", "/api/v1/orders?page=2&per_page=20", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data, ok := response["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 5)

	pagination, ok := response["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(25), pagination["total"])
	assert.Equal(t, false, pagination["has_next"])
	assert.Equal(t, true, pagination["has_prev"])
}

func TestInventoryEndpoint(t *testing.T) {
	server, db := newTestServer(t, "")
	seedBurger(t, db)

	w, response := doJSON(t, server, "GET", "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 5.0, data["flour"].(float64), 1e-9)
}

func TestAuthRequiredWhenSecretSet(t *testing.T) {
	server, db := newTestServer(t, "topsecret")
	seedBurger(t, db)

	w, response := doJSON(t, server, "GET", "/api/v1/availability", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, response["success"])

	// Health stays open
	w, _ = doJSON(t, server, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
