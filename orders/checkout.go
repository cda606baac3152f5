package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-svc/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type checkoutLine struct {
	productID int
	quantity  int
	fromCart  bool
}

// Checkout turns the shopper's selection into live order pairs. Cart
// checkout consumes the matching cart rows; buy-now takes a single product
// and quantity and leaves the cart alone. Stock is re-read under a row lock
// inside the same transaction that decrements it, so two checkouts of the
// same product serialize instead of both passing a stale stock check.
// Nothing is visible to other readers until commit; any failure rolls the
// whole unit back.
func (s *Service) Checkout(ctx context.Context, shopperID int, req models.CheckoutRequest) ([]int, error) {
	ctx, span := otel.Tracer("marketplace").Start(ctx, "orders.Checkout")
	defer span.End()
	span.SetAttributes(attribute.Int("shopper_id", shopperID))

	lines, err := resolveLines(req)
	if err != nil {
		return nil, err
	}

	var orderIDs []int
	var created []models.OrderItem
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := verifyShopper(ctx, tx, shopperID); err != nil {
			return err
		}
		for _, line := range lines {
			qty := line.quantity
			if line.fromCart {
				cartQty, err := lockCartLine(ctx, tx, shopperID, line.productID)
				if err != nil {
					return err
				}
				qty = cartQty
			}
			item, err := placeOrderLine(ctx, tx, shopperID, line.productID, qty)
			if err != nil {
				return err
			}
			if line.fromCart {
				if _, err := tx.ExecContext(ctx,
					"DELETE FROM cart_items WHERE shopper_id = $1 AND product_id = $2",
					shopperID, line.productID); err != nil {
					return fmt.Errorf("failed to clear cart line: %w", err)
				}
			}
			orderIDs = append(orderIDs, item.ID)
			created = append(created, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, item := range created {
		s.publishEvent(ctx, "order_placed", item)
	}
	s.logger.Info("Checkout completed",
		zap.Int("shopper_id", shopperID),
		zap.Int("orders", len(orderIDs)))
	return orderIDs, nil
}

func resolveLines(req models.CheckoutRequest) ([]checkoutLine, error) {
	if len(req.ProductIDs) > 0 {
		lines := make([]checkoutLine, 0, len(req.ProductIDs))
		seen := make(map[int]bool, len(req.ProductIDs))
		for _, id := range req.ProductIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			lines = append(lines, checkoutLine{productID: id, fromCart: true})
		}
		return lines, nil
	}
	if req.SingleProductID != 0 {
		if req.SingleProductQuantity < 1 {
			return nil, &ValidationError{Msg: "quantity must be at least 1"}
		}
		return []checkoutLine{{productID: req.SingleProductID, quantity: req.SingleProductQuantity}}, nil
	}
	return nil, &ValidationError{Msg: "no products selected for checkout"}
}

func verifyShopper(ctx context.Context, tx *sql.Tx, shopperID int) error {
	var id int
	err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = $1", shopperID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "shopper", ID: shopperID}
	}
	if err != nil {
		return fmt.Errorf("failed to verify shopper: %w", err)
	}
	return nil
}

// lockCartLine reads the cart quantity FOR UPDATE. A concurrent checkout of
// the same cart blocks here and, once the first commit deletes the row,
// fails validation instead of double-processing the line.
func lockCartLine(ctx context.Context, tx *sql.Tx, shopperID, productID int) (int, error) {
	var qty int
	err := tx.QueryRowContext(ctx,
		"SELECT quantity FROM cart_items WHERE shopper_id = $1 AND product_id = $2 FOR UPDATE",
		shopperID, productID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &ValidationError{Msg: fmt.Sprintf("product %d is not in your cart", productID)}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cart line: %w", err)
	}
	return qty, nil
}

// placeOrderLine deducts stock and inserts one order pair. The price read
// here is the snapshot the order keeps for life; later price changes do not
// touch it.
func placeOrderLine(ctx context.Context, tx *sql.Tx, shopperID, productID, quantity int) (*models.OrderItem, error) {
	var (
		name     string
		price    float64
		stock    int
		sellerID int
	)
	err := tx.QueryRowContext(ctx,
		"SELECT name, price, stock, seller_id FROM products WHERE id = $1 FOR UPDATE",
		productID).Scan(&name, &price, &stock, &sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "product", ID: productID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product %d: %w", productID, err)
	}

	if stock < quantity {
		return nil, &InsufficientStockError{ProductName: name, Available: stock, Requested: quantity}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		quantity, productID); err != nil {
		return nil, fmt.Errorf("failed to deduct stock: %w", err)
	}

	item := models.OrderItem{
		ProductID:      productID,
		ShopperID:      shopperID,
		SellerID:       sellerID,
		Quantity:       quantity,
		TotalAmount:    price * float64(quantity),
		OrderDate:      time.Now(),
		ShippingStatus: models.ShippingPending,
		PaymentStatus:  models.PaymentPending,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO order_items (product_id, shopper_id, seller_id, quantity, total_amount, order_date, shipping_status, payment_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		item.ProductID, item.ShopperID, item.SellerID, item.Quantity,
		item.TotalAmount, item.OrderDate, item.ShippingStatus, item.PaymentStatus,
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO seller_orders (product_id, seller_id, shopper_id, quantity, total_amount, order_date, shipping_status, payment_status, shopper_order_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ProductID, item.SellerID, item.ShopperID, item.Quantity,
		item.TotalAmount, item.OrderDate, item.ShippingStatus, item.PaymentStatus, item.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to create seller order: %w", err)
	}

	return &item, nil
}
