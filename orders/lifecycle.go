package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketplace-svc/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Outcomes reported by shopper/seller lifecycle actions, used by handlers
// to phrase the response message.
const (
	OutcomeCancelled       = "cancelled"
	OutcomeRefundRequested = "refund_requested"
	OutcomeRefundApproved  = "refund_approved"
	OutcomeRefundRejected  = "refund_rejected"
)

// SimulatePayment flips the pair's payment status Pending -> Paid. There is
// no gateway; the flip is the whole payment. A second call finds the pair
// already Paid and fails NotFound.
func (s *Service) SimulatePayment(ctx context.Context, shopperID, orderID int) error {
	ctx, span := otel.Tracer("marketplace").Start(ctx, "orders.SimulatePayment")
	defer span.End()
	span.SetAttributes(attribute.Int("order_id", orderID))

	var paid models.OrderItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		locked, err := lockOrderItem(ctx, tx, orderID, shopperID)
		if err != nil {
			return err
		}
		if !canSimulatePayment(locked.PaymentStatus) {
			return &NotFoundError{Entity: "pending order", ID: orderID}
		}
		if err := setPairPaymentStatus(ctx, tx, locked.ID, models.PaymentPaid); err != nil {
			return err
		}
		locked.PaymentStatus = models.PaymentPaid
		paid = *locked
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, "order_paid", paid)
	s.logger.Info("Payment simulated", zap.Int("order_id", orderID))
	return nil
}

// RequestCancellationOrRefund is the shopper's single exit action. An
// unpaid order cancels on the spot: stock goes back, the pair is archived
// with payment recorded as Pending, and the live rows are gone. A paid
// order only raises a refund request for the seller to decide. Anything
// else (already refunded) is not a legal state for this action.
func (s *Service) RequestCancellationOrRefund(ctx context.Context, shopperID, orderID int) (string, error) {
	ctx, span := otel.Tracer("marketplace").Start(ctx, "orders.RequestCancellationOrRefund")
	defer span.End()
	span.SetAttributes(attribute.Int("order_id", orderID))

	var outcome string
	var item models.OrderItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		locked, err := lockOrderItem(ctx, tx, orderID, shopperID)
		if err != nil {
			return err
		}
		item = *locked

		switch classifyCancellation(item.PaymentStatus) {
		case outcomeImmediateCancel:
			if err := restoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := archiveOrderPair(ctx, tx, &item, models.ShippingCancelled, models.PaymentPending); err != nil {
				return err
			}
			item.ShippingStatus = models.ShippingCancelled
			outcome = OutcomeCancelled
		case outcomeRefundRequested:
			if err := setPairShippingStatus(ctx, tx, item.ID, models.ShippingRefundRequested); err != nil {
				return err
			}
			item.ShippingStatus = models.ShippingRefundRequested
			outcome = OutcomeRefundRequested
		default:
			return &InvalidStateError{
				Msg: fmt.Sprintf("order %d cannot be cancelled or refunded in payment status %q", orderID, item.PaymentStatus),
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if outcome == OutcomeCancelled {
		s.publishEvent(ctx, "order_cancelled", item)
	} else {
		s.publishEvent(ctx, "refund_requested", item)
	}
	s.logger.Info("Cancellation requested",
		zap.Int("order_id", orderID),
		zap.String("outcome", outcome))
	return outcome, nil
}

// HandleRefundRequest resolves a pending refund. Approval cancels the pair
// for good: stock back, statuses Cancelled/Refunded, archived, live rows
// deleted. Rejection reverts both sides to shipping Pending with payment
// still Paid, putting the order back on the normal paid flow.
func (s *Service) HandleRefundRequest(ctx context.Context, sellerID, sellerOrderID int, action string) (string, error) {
	ctx, span := otel.Tracer("marketplace").Start(ctx, "orders.HandleRefundRequest")
	defer span.End()
	span.SetAttributes(attribute.Int("order_id", sellerOrderID), attribute.String("action", action))

	if action != "approve" && action != "reject" {
		return "", &ValidationError{Msg: fmt.Sprintf("invalid refund action %q", action)}
	}

	var outcome string
	var item models.OrderItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		so, err := lockSellerOrder(ctx, tx, sellerOrderID, sellerID)
		if err != nil {
			return err
		}
		locked, err := lockOrderItem(ctx, tx, so.ShopperOrderID, so.ShopperID)
		if err != nil {
			return err
		}
		item = *locked

		if !canHandleRefund(item.ShippingStatus, item.PaymentStatus) {
			return &InvalidStateError{
				Msg: fmt.Sprintf("order %d has no pending refund request", so.ShopperOrderID),
			}
		}

		if action == "approve" {
			if err := restoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := archiveOrderPair(ctx, tx, &item, models.ShippingCancelled, models.PaymentRefunded); err != nil {
				return err
			}
			item.ShippingStatus = models.ShippingCancelled
			item.PaymentStatus = models.PaymentRefunded
			outcome = OutcomeRefundApproved
		} else {
			if err := setPairShippingStatus(ctx, tx, item.ID, models.ShippingPending); err != nil {
				return err
			}
			item.ShippingStatus = models.ShippingPending
			outcome = OutcomeRefundRejected
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if outcome == OutcomeRefundApproved {
		s.publishEvent(ctx, "refund_approved", item)
	} else {
		s.publishEvent(ctx, "refund_rejected", item)
	}
	s.logger.Info("Refund request handled",
		zap.Int("seller_order_id", sellerOrderID),
		zap.String("outcome", outcome))
	return outcome, nil
}

// UpdateShippingStatus is the seller's operational override: it sets the
// shipping status on both sides of a pair it owns without gating on the
// current state. An archived pair is gone and comes back NotFound.
func (s *Service) UpdateShippingStatus(ctx context.Context, sellerID, sellerOrderID int, status models.ShippingStatus) (*models.SellerOrder, *models.OrderItem, error) {
	ctx, span := otel.Tracer("marketplace").Start(ctx, "orders.UpdateShippingStatus")
	defer span.End()
	span.SetAttributes(attribute.Int("order_id", sellerOrderID), attribute.String("status", string(status)))

	if !status.Valid() {
		return nil, nil, &ValidationError{Msg: fmt.Sprintf("invalid shipping status %q", status)}
	}

	var so *models.SellerOrder
	var item *models.OrderItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		locked, err := lockSellerOrder(ctx, tx, sellerOrderID, sellerID)
		if err != nil {
			return err
		}
		so = locked

		if err := setPairShippingStatus(ctx, tx, so.ShopperOrderID, status); err != nil {
			return err
		}
		so.ShippingStatus = status
		if status == models.ShippingDelivered && so.DeliveryDate == nil {
			now := time.Now()
			if _, err := tx.ExecContext(ctx,
				"UPDATE seller_orders SET delivery_date = $1 WHERE id = $2",
				now, so.ID); err != nil {
				return fmt.Errorf("failed to set delivery date: %w", err)
			}
			so.DeliveryDate = &now
		}

		item, err = lockOrderItem(ctx, tx, so.ShopperOrderID, so.ShopperID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.publishEvent(ctx, "shipping_status_updated", *item)
	s.logger.Info("Shipping status updated",
		zap.Int("seller_order_id", sellerOrderID),
		zap.String("status", string(status)))
	return so, item, nil
}

// ConfirmReceipt is the shopper's final acknowledgement. It requires the
// seller to have shipped, marks the pair Delivered and Paid, and archives
// it in the same transaction.
func (s *Service) ConfirmReceipt(ctx context.Context, shopperID, orderID int) error {
	ctx, span := otel.Tracer("marketplace").Start(ctx, "orders.ConfirmReceipt")
	defer span.End()
	span.SetAttributes(attribute.Int("order_id", orderID))

	var item models.OrderItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		locked, err := lockOrderItem(ctx, tx, orderID, shopperID)
		if err != nil {
			return err
		}
		item = *locked

		if !canConfirmReceipt(item.ShippingStatus) {
			return &InvalidStateError{
				Msg: fmt.Sprintf("order %d has not been shipped yet", orderID),
			}
		}

		if err := archiveOrderPair(ctx, tx, &item, models.ShippingDelivered, models.PaymentPaid); err != nil {
			return err
		}
		item.ShippingStatus = models.ShippingDelivered
		item.PaymentStatus = models.PaymentPaid
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, "order_delivered", item)
	s.logger.Info("Order receipt confirmed", zap.Int("order_id", orderID))
	return nil
}
