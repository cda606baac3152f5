package orders

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"marketplace-svc/models"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap/zaptest"
)

func setupServiceTest(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// nil producer: event publishing is skipped in tests
	return NewService(db, nil, zaptest.NewLogger(t)), mock
}

func TestCheckout_BuyNow_Success(t *testing.T) {
	service, mock := setupServiceTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, price, stock, seller_id FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "stock", "seller_id"}).
			AddRow("Widget", 10.0, 5, 5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - $1")).
		WithArgs(2, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec("INSERT INTO seller_orders").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	orderIDs, err := service.Checkout(context.Background(), 7, models.CheckoutRequest{
		SingleProductID:       3,
		SingleProductQuantity: 2,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if len(orderIDs) != 1 || orderIDs[0] != 42 {
		t.Errorf("Expected order IDs [42], got %v", orderIDs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestCheckout_CartLine_ConsumesCart(t *testing.T) {
	service, mock := setupServiceTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT quantity FROM cart_items").
		WithArgs(7, 3).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, price, stock, seller_id FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "stock", "seller_id"}).
			AddRow("Widget", 10.0, 5, 5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - $1")).
		WithArgs(2, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec("INSERT INTO seller_orders").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	orderIDs, err := service.Checkout(context.Background(), 7, models.CheckoutRequest{
		ProductIDs: []int{3},
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if len(orderIDs) != 1 {
		t.Errorf("Expected one order, got %d", len(orderIDs))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestCheckout_InsufficientStock_RollsBack(t *testing.T) {
	service, mock := setupServiceTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, price, stock, seller_id FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "stock", "seller_id"}).
			AddRow("Widget", 10.0, 2, 5))
	mock.ExpectRollback()

	_, err := service.Checkout(context.Background(), 7, models.CheckoutRequest{
		SingleProductID:       3,
		SingleProductQuantity: 3,
	})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Widget") {
		t.Errorf("Expected error to name the product, got %q", err.Error())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestCheckout_NoSelection(t *testing.T) {
	service, _ := setupServiceTest(t)

	_, err := service.Checkout(context.Background(), 7, models.CheckoutRequest{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestCheckout_ProductNotFound(t *testing.T) {
	service, mock := setupServiceTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, price, stock, seller_id FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := service.Checkout(context.Background(), 7, models.CheckoutRequest{
		SingleProductID:       99,
		SingleProductQuantity: 1,
	})
	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}
