// internal/interfaces/http/handlers/cart_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/greenbasket/grocery-backend/internal/domain/cart"
	"github.com/greenbasket/grocery-backend/internal/domain/product"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCartRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&product.Product{}, &cart.Cart{}, &cart.CartItem{}))

	handler := NewCartHandler(db, nil, &config.Config{})

	router := gin.New()
	router.POST("/cart/add", handler.AddItem)
	router.POST("/cart/remove-item", handler.RemoveItem)
	router.GET("/cart/:user_id", handler.GetItems)
	router.POST("/cart/clear", handler.ClearCart)
	router.POST("/cart/checkout", handler.Checkout)
	return router, db
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedCartProduct(t *testing.T, db *gorm.DB, quantity int) product.Product {
	t.Helper()
	prod := product.Product{Name: "Bananas", Price: 299, Quantity: quantity, Unit: "kg"}
	require.NoError(t, db.Create(&prod).Error)
	return prod
}

func TestAddItemEndpoint(t *testing.T) {
	router, db := newCartRouter(t)
	prod := seedCartProduct(t, db, 10)

	rec := postJSON(t, router, "/cart/add", gin.H{
		"user_id":    7,
		"product_id": prod.ID,
		"quantity":   3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data cart.CartItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Data.Quantity)

	var stored product.Product
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, 7, stored.Quantity)
}

func TestAddItemEndpointErrors(t *testing.T) {
	router, db := newCartRouter(t)
	prod := seedCartProduct(t, db, 2)

	// Unknown product
	rec := postJSON(t, router, "/cart/add", gin.H{"user_id": 7, "product_id": 999, "quantity": 1})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// More than is on the shelf
	rec = postJSON(t, router, "/cart/add", gin.H{"user_id": 7, "product_id": prod.ID, "quantity": 5})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Binding rejects non-positive quantity before the service runs
	rec = postJSON(t, router, "/cart/add", gin.H{"user_id": 7, "product_id": prod.ID, "quantity": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Failed adds must not have touched stock
	var stored product.Product
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, 2, stored.Quantity)
}

func TestGetItemsEndpoint(t *testing.T) {
	router, db := newCartRouter(t)
	prod := seedCartProduct(t, db, 10)

	rec := postJSON(t, router, "/cart/add", gin.H{"user_id": 7, "product_id": prod.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/cart/7", nil)
	get := httptest.NewRecorder()
	router.ServeHTTP(get, req)
	require.Equal(t, http.StatusOK, get.Code)

	var resp struct {
		Data []cart.CartItemDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Bananas", resp.Data[0].Name)
	require.Equal(t, 2, resp.Data[0].Quantity)
}

func TestGetItemsEndpointNotFound(t *testing.T) {
	router, _ := newCartRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/cart/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/cart/not-a-number", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveClearCheckoutEndpoints(t *testing.T) {
	router, db := newCartRouter(t)
	prod := seedCartProduct(t, db, 10)

	rec := postJSON(t, router, "/cart/add", gin.H{"user_id": 7, "product_id": prod.ID, "quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/cart/remove-item", gin.H{"user_id": 7, "product_id": prod.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var stored product.Product
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, 7, stored.Quantity)

	rec = postJSON(t, router, "/cart/checkout", gin.H{"user_id": 7})
	require.Equal(t, http.StatusOK, rec.Code)

	// Checkout keeps the committed units off the shelf
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, 7, stored.Quantity)

	// The emptied cart can be reused and cleared
	rec = postJSON(t, router, "/cart/add", gin.H{"user_id": 7, "product_id": prod.ID, "quantity": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postJSON(t, router, "/cart/clear", gin.H{"user_id": 7})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, 7, stored.Quantity)
}

func TestClearAndCheckoutUnknownCart(t *testing.T) {
	router, _ := newCartRouter(t)

	rec := postJSON(t, router, "/cart/clear", gin.H{"user_id": 42})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = postJSON(t, router, "/cart/checkout", gin.H{"user_id": 42})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
