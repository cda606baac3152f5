package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace-svc/kafka"
	"marketplace-svc/models"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Service owns every mutation of the order tables. All call sites go through
// it so that an OrderItem is never written without its SellerOrder mirror.
type Service struct {
	db       *sql.DB
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewService(db *sql.DB, producer sarama.SyncProducer, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		producer: producer,
		logger:   logger,
	}
}

// withTx runs fn inside a single transaction. Commit and rollback live here,
// at the operation boundary; fn receives the transaction by reference and
// never commits on its own.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("Rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// publishEvent emits a lifecycle event after a successful commit. Publish
// failures are logged, never surfaced to the caller.
func (s *Service) publishEvent(ctx context.Context, eventType string, item models.OrderItem) {
	if s.producer == nil {
		return
	}
	event := models.OrderEvent{
		OrderID:        item.ID,
		ShopperID:      item.ShopperID,
		SellerID:       item.SellerID,
		ProductID:      item.ProductID,
		Quantity:       item.Quantity,
		TotalAmount:    item.TotalAmount,
		ShippingStatus: item.ShippingStatus,
		PaymentStatus:  item.PaymentStatus,
		EventType:      eventType,
	}
	if err := kafka.PublishOrderEvent(ctx, s.producer, "order_events", event, s.logger); err != nil {
		s.logger.Error("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.Int("order_id", item.ID),
			zap.Error(err))
	}
}

// lockOrderItem loads a shopper's live order row FOR UPDATE so the status
// read and the following writes share one serialization point.
func lockOrderItem(ctx context.Context, tx *sql.Tx, orderID, shopperID int) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.QueryRowContext(ctx,
		`SELECT id, product_id, shopper_id, seller_id, quantity, total_amount, order_date, shipping_status, payment_status
		 FROM order_items WHERE id = $1 AND shopper_id = $2 FOR UPDATE`,
		orderID, shopperID,
	).Scan(&item.ID, &item.ProductID, &item.ShopperID, &item.SellerID, &item.Quantity,
		&item.TotalAmount, &item.OrderDate, &item.ShippingStatus, &item.PaymentStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	return &item, nil
}

// lockSellerOrder loads a seller's live mirror row FOR UPDATE, checking
// ownership.
func lockSellerOrder(ctx context.Context, tx *sql.Tx, sellerOrderID, sellerID int) (*models.SellerOrder, error) {
	var so models.SellerOrder
	err := tx.QueryRowContext(ctx,
		`SELECT id, product_id, seller_id, shopper_id, quantity, total_amount, order_date, shipping_status, payment_status, shopper_order_id, delivery_date
		 FROM seller_orders WHERE id = $1 AND seller_id = $2 FOR UPDATE`,
		sellerOrderID, sellerID,
	).Scan(&so.ID, &so.ProductID, &so.SellerID, &so.ShopperID, &so.Quantity,
		&so.TotalAmount, &so.OrderDate, &so.ShippingStatus, &so.PaymentStatus,
		&so.ShopperOrderID, &so.DeliveryDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "order", ID: sellerOrderID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load seller order %d: %w", sellerOrderID, err)
	}
	return &so, nil
}

// setPairShippingStatus writes the same shipping status to both sides of a
// pair. The pairing invariant holds because no caller updates one side
// outside this helper.
func setPairShippingStatus(ctx context.Context, tx *sql.Tx, orderItemID int, status models.ShippingStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE order_items SET shipping_status = $1 WHERE id = $2",
		status, orderItemID)
	if err != nil {
		return fmt.Errorf("failed to update order shipping status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "order", ID: orderItemID}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE seller_orders SET shipping_status = $1 WHERE shopper_order_id = $2",
		status, orderItemID); err != nil {
		return fmt.Errorf("failed to update seller order shipping status: %w", err)
	}
	return nil
}

// setPairPaymentStatus writes the same payment status to both sides of a
// pair.
func setPairPaymentStatus(ctx context.Context, tx *sql.Tx, orderItemID int, status models.PaymentStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE order_items SET payment_status = $1 WHERE id = $2",
		status, orderItemID)
	if err != nil {
		return fmt.Errorf("failed to update order payment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "order", ID: orderItemID}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE seller_orders SET payment_status = $1 WHERE shopper_order_id = $2",
		status, orderItemID); err != nil {
		return fmt.Errorf("failed to update seller order payment status: %w", err)
	}
	return nil
}

// setPairStatuses writes shipping and payment status to both sides of a pair.
func setPairStatuses(ctx context.Context, tx *sql.Tx, orderItemID int, ship models.ShippingStatus, pay models.PaymentStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE order_items SET shipping_status = $1, payment_status = $2 WHERE id = $3",
		ship, pay, orderItemID)
	if err != nil {
		return fmt.Errorf("failed to update order statuses: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "order", ID: orderItemID}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE seller_orders SET shipping_status = $1, payment_status = $2 WHERE shopper_order_id = $3",
		ship, pay, orderItemID); err != nil {
		return fmt.Errorf("failed to update seller order statuses: %w", err)
	}
	return nil
}

// restoreStock gives back units deducted at checkout. Only cancellation and
// refund approval call this; stock never changes anywhere else outside
// checkout and seller CRUD.
func restoreStock(ctx context.Context, tx *sql.Tx, productID, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "product", ID: productID}
	}
	return nil
}
