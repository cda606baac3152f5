package orders

import "marketplace-svc/models"

// The lifecycle of an order pair, checked before any row is written.
// Shipping and payment advance on separate axes:
//
//	payment:  Pending -> Paid -> Refunded
//	shipping: Pending -> Shipped -> Delivered
//	          Pending -> Cancelled (while payment Pending)
//	          * -> Refund Requested (while payment Paid) -> Cancelled | Pending
//
// Delivered and Cancelled are terminal and trigger archival.

// canSimulatePayment: payment flips Pending -> Paid exactly once.
func canSimulatePayment(pay models.PaymentStatus) bool {
	return pay == models.PaymentPending
}

// cancellationOutcome classifies a shopper cancel/refund action by the
// current payment status.
type cancellationOutcome int

const (
	outcomeInvalid cancellationOutcome = iota
	// unpaid order: cancel immediately, restore stock, archive
	outcomeImmediateCancel
	// paid order: raise a refund request, seller decides
	outcomeRefundRequested
)

func classifyCancellation(pay models.PaymentStatus) cancellationOutcome {
	switch pay {
	case models.PaymentPending:
		return outcomeImmediateCancel
	case models.PaymentPaid:
		return outcomeRefundRequested
	default:
		return outcomeInvalid
	}
}

// canHandleRefund: a seller may act on a refund only while the pair sits in
// Refund Requested with payment Paid.
func canHandleRefund(ship models.ShippingStatus, pay models.PaymentStatus) bool {
	return ship == models.ShippingRefundRequested && pay == models.PaymentPaid
}

// canConfirmReceipt: the shopper confirms receipt once the seller has
// shipped (or already marked delivery).
func canConfirmReceipt(ship models.ShippingStatus) bool {
	return ship == models.ShippingShipped || ship == models.ShippingDelivered
}
