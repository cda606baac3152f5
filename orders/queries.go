package orders

import (
	"context"
	"fmt"

	"marketplace-svc/models"
)

// GetOrderItems lists the shopper's live orders joined with product display
// fields. Images come back as data-URIs.
func (s *Service) GetOrderItems(ctx context.Context, shopperID int) ([]models.OrderView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.product_id, o.shopper_id, o.seller_id, o.quantity, o.total_amount, o.order_date, o.shipping_status, o.payment_status,
		        p.name, p.image, p.image_mime
		 FROM order_items o
		 JOIN products p ON p.id = o.product_id
		 WHERE o.shopper_id = $1
		 ORDER BY o.order_date DESC`, shopperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var views []models.OrderView
	for rows.Next() {
		var v models.OrderView
		var image []byte
		var mime *string
		if err := rows.Scan(&v.ID, &v.ProductID, &v.ShopperID, &v.SellerID, &v.Quantity,
			&v.TotalAmount, &v.OrderDate, &v.ShippingStatus, &v.PaymentStatus,
			&v.ProductName, &image, &mime); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if mime != nil {
			v.ImageURI = models.ImageDataURI(*mime, image)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// GetSellerOrders lists the seller's live mirror orders with product and
// shopper display fields.
func (s *Service) GetSellerOrders(ctx context.Context, sellerID int) ([]models.SellerOrderView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT so.id, so.product_id, so.seller_id, so.shopper_id, so.quantity, so.total_amount, so.order_date, so.shipping_status, so.payment_status, so.shopper_order_id, so.delivery_date,
		        p.name, u.name, p.image, p.image_mime
		 FROM seller_orders so
		 JOIN products p ON p.id = so.product_id
		 JOIN users u ON u.id = so.shopper_id
		 WHERE so.seller_id = $1
		 ORDER BY so.order_date DESC`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller orders: %w", err)
	}
	defer rows.Close()

	var views []models.SellerOrderView
	for rows.Next() {
		var v models.SellerOrderView
		var image []byte
		var mime *string
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SellerID, &v.ShopperID, &v.Quantity,
			&v.TotalAmount, &v.OrderDate, &v.ShippingStatus, &v.PaymentStatus,
			&v.ShopperOrderID, &v.DeliveryDate,
			&v.ProductName, &v.ShopperName, &image, &mime); err != nil {
			return nil, fmt.Errorf("failed to scan seller order: %w", err)
		}
		if mime != nil {
			v.ImageURI = models.ImageDataURI(*mime, image)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// GetOrderHistory lists the shopper's archived orders, newest first.
func (s *Service) GetOrderHistory(ctx context.Context, shopperID int) ([]models.OrderHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, shopper_id, product_name, product_price, product_description, seller_name, store_name, quantity, total_amount, shipping_status, payment_status, order_date, archived_at
		 FROM order_history WHERE shopper_id = $1 ORDER BY archived_at DESC`, shopperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	var history []models.OrderHistory
	for rows.Next() {
		var h models.OrderHistory
		if err := rows.Scan(&h.ID, &h.ShopperID, &h.ProductName, &h.ProductPrice,
			&h.ProductDescription, &h.SellerName, &h.StoreName, &h.Quantity,
			&h.TotalAmount, &h.ShippingStatus, &h.PaymentStatus, &h.OrderDate,
			&h.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// GetSellerOrderHistory lists the seller's archived orders, newest first.
func (s *Service) GetSellerOrderHistory(ctx context.Context, sellerID int) ([]models.SellerOrderHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seller_id, product_name, product_price, product_description, shopper_name, shopper_email, quantity, total_amount, shipping_status, payment_status, order_date, archived_at
		 FROM seller_order_history WHERE seller_id = $1 ORDER BY archived_at DESC`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller order history: %w", err)
	}
	defer rows.Close()

	var history []models.SellerOrderHistory
	for rows.Next() {
		var h models.SellerOrderHistory
		if err := rows.Scan(&h.ID, &h.SellerID, &h.ProductName, &h.ProductPrice,
			&h.ProductDescription, &h.ShopperName, &h.ShopperEmail, &h.Quantity,
			&h.TotalAmount, &h.ShippingStatus, &h.PaymentStatus, &h.OrderDate,
			&h.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan seller order history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// UserHasOpenOrders reports whether any live order references the user as
// shopper or seller. The account delete path checks this before removing a
// user; live orders pin both counterparties.
func (s *Service) UserHasOpenOrders(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM order_items WHERE shopper_id = $1 OR seller_id = $1)",
		userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open orders: %w", err)
	}
	return exists, nil
}

// ProductHasOpenOrders reports whether any live order references the
// product. The product delete path checks this first; history rows keep
// their own denormalized copy and do not pin the product.
func (s *Service) ProductHasOpenOrders(ctx context.Context, productID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)",
		productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open orders for product: %w", err)
	}
	return exists, nil
}
