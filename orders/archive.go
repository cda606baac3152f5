package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-svc/models"
)

// archiveOrderPair moves a terminated live pair into the two history
// tables and deletes the live rows, all within the caller's transaction.
// Product and counterparty fields are copied out at this moment so the
// history rows survive later catalog or account changes. Each live pair is
// archived exactly once: the rows are gone when this returns.
func archiveOrderPair(ctx context.Context, tx *sql.Tx, item *models.OrderItem, finalShip models.ShippingStatus, finalPay models.PaymentStatus) error {
	var (
		productName, productDesc string
		productPrice             float64
	)
	err := tx.QueryRowContext(ctx,
		"SELECT name, price, description FROM products WHERE id = $1",
		item.ProductID).Scan(&productName, &productPrice, &productDesc)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "product", ID: item.ProductID}
	}
	if err != nil {
		return fmt.Errorf("failed to read product for archival: %w", err)
	}

	var sellerName, storeName string
	err = tx.QueryRowContext(ctx,
		"SELECT name, store_name FROM users WHERE id = $1",
		item.SellerID).Scan(&sellerName, &storeName)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "seller", ID: item.SellerID}
	}
	if err != nil {
		return fmt.Errorf("failed to read seller for archival: %w", err)
	}

	var shopperName, shopperEmail string
	err = tx.QueryRowContext(ctx,
		"SELECT name, email FROM users WHERE id = $1",
		item.ShopperID).Scan(&shopperName, &shopperEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "shopper", ID: item.ShopperID}
	}
	if err != nil {
		return fmt.Errorf("failed to read shopper for archival: %w", err)
	}

	archivedAt := time.Now()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO order_history (shopper_id, product_name, product_price, product_description, seller_name, store_name, quantity, total_amount, shipping_status, payment_status, order_date, archived_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		item.ShopperID, productName, productPrice, productDesc, sellerName, storeName,
		item.Quantity, item.TotalAmount, finalShip, finalPay, item.OrderDate, archivedAt,
	); err != nil {
		return fmt.Errorf("failed to write order history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO seller_order_history (seller_id, product_name, product_price, product_description, shopper_name, shopper_email, quantity, total_amount, shipping_status, payment_status, order_date, archived_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		item.SellerID, productName, productPrice, productDesc, shopperName, shopperEmail,
		item.Quantity, item.TotalAmount, finalShip, finalPay, item.OrderDate, archivedAt,
	); err != nil {
		return fmt.Errorf("failed to write seller order history: %w", err)
	}

	// Seller mirror goes first; its FK references the order item.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM seller_orders WHERE shopper_order_id = $1", item.ID); err != nil {
		return fmt.Errorf("failed to delete seller order: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM order_items WHERE id = $1", item.ID); err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}

	return nil
}
