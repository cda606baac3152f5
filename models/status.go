package models

// ShippingStatus is the logistics state of an order pair. Both sides of a
// pair (the shopper order item and the seller order) always carry the same
// value.
type ShippingStatus string

const (
	ShippingPending         ShippingStatus = "Pending"
	ShippingShipped         ShippingStatus = "Shipped"
	ShippingDelivered       ShippingStatus = "Delivered"
	ShippingReturned        ShippingStatus = "Returned"
	ShippingCancelled       ShippingStatus = "Cancelled"
	ShippingRefundRequested ShippingStatus = "Refund Requested"
)

// PaymentStatus is the monetary state of an order pair.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

var shippingStatuses = map[ShippingStatus]bool{
	ShippingPending:         true,
	ShippingShipped:         true,
	ShippingDelivered:       true,
	ShippingReturned:        true,
	ShippingCancelled:       true,
	ShippingRefundRequested: true,
}

func (s ShippingStatus) Valid() bool {
	return shippingStatuses[s]
}

// Terminal reports whether the status ends the life of an order pair and
// triggers archival.
func (s ShippingStatus) Terminal() bool {
	return s == ShippingDelivered || s == ShippingCancelled
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentRefunded
}
