package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"marketplace-svc/models"
	"marketplace-svc/orders"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

// withPrincipal injects an authenticated identity the way the auth
// middleware would.
func withPrincipal(p models.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("principal", p)
		c.Next()
	}
}

func setupOrderTest(t *testing.T, p models.Principal) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t)
	service := orders.NewService(db, nil, logger)
	handler := NewOrderHandler(service, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(withPrincipal(p))
	router.POST("/orders/checkout", handler.Checkout)
	router.POST("/orders/:id/payment", handler.SimulatePayment)
	router.POST("/orders/:id/cancel", handler.RequestCancellationOrRefund)
	router.GET("/orders", handler.GetOrders)
	router.GET("/orders/history", handler.GetOrderHistory)

	return mock, router
}

func shopperPrincipal() models.Principal {
	return models.Principal{UserID: 7, Role: models.RoleShopper, Active: true}
}

func TestOrderHandler_Checkout_NoSelection(t *testing.T) {
	_, router := setupOrderTest(t, shopperPrincipal())

	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if ok, _ := resp["ok"].(bool); ok {
		t.Error("Expected ok=false in response")
	}
}

func TestOrderHandler_Checkout_InsufficientStock(t *testing.T) {
	mock, router := setupOrderTest(t, shopperPrincipal())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT name, price, stock, seller_id FROM products").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "stock", "seller_id"}).
			AddRow("Widget", 10.0, 2, 5))
	mock.ExpectRollback()

	body := []byte(`{"single_product_id":3,"single_product_quantity":5}`)
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestOrderHandler_SimulatePayment_NotPending(t *testing.T) {
	mock, router := setupOrderTest(t, shopperPrincipal())

	mock.ExpectBegin()
	mock.ExpectQuery("FROM order_items WHERE id =").
		WithArgs(42, 7).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "shopper_id", "seller_id", "quantity",
			"total_amount", "order_date", "shipping_status", "payment_status",
		}).AddRow(42, 3, 7, 5, 2, 20.0, time.Now(), "Pending", "Paid"))
	mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPost, "/orders/42/payment", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestOrderHandler_GetOrders_Success(t *testing.T) {
	mock, router := setupOrderTest(t, shopperPrincipal())

	rows := sqlmock.NewRows([]string{
		"id", "product_id", "shopper_id", "seller_id", "quantity",
		"total_amount", "order_date", "shipping_status", "payment_status",
		"name", "image", "image_mime",
	}).AddRow(42, 3, 7, 5, 2, 20.0, time.Now(), "Pending", "Pending", "Widget", nil, nil)
	mock.ExpectQuery("FROM order_items o").
		WithArgs(7).
		WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestOrderHandler_GetOrders_NoneFound(t *testing.T) {
	mock, router := setupOrderTest(t, shopperPrincipal())

	rows := sqlmock.NewRows([]string{
		"id", "product_id", "shopper_id", "seller_id", "quantity",
		"total_amount", "order_date", "shipping_status", "payment_status",
		"name", "image", "image_mime",
	})
	mock.ExpectQuery("FROM order_items o").
		WithArgs(7).
		WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}
