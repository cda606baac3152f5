package models

import "time"

// OrderItem is the shopper-facing side of an order pair. It exists only
// while the order is live; on reaching a terminal state it is archived to
// OrderHistory and deleted.
type OrderItem struct {
	ID             int            `json:"id"`
	ProductID      int            `json:"product_id"`
	ShopperID      int            `json:"shopper_id"`
	SellerID       int            `json:"seller_id"`
	Quantity       int            `json:"quantity"`
	TotalAmount    float64        `json:"total_amount"`
	OrderDate      time.Time      `json:"order_date"`
	ShippingStatus ShippingStatus `json:"shipping_status"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
}

// SellerOrder mirrors an OrderItem for the owning seller. ShopperOrderID
// links it to its pair; the two rows are created and destroyed together and
// their statuses stay in lockstep.
type SellerOrder struct {
	ID             int            `json:"id"`
	ProductID      int            `json:"product_id"`
	SellerID       int            `json:"seller_id"`
	ShopperID      int            `json:"shopper_id"`
	Quantity       int            `json:"quantity"`
	TotalAmount    float64        `json:"total_amount"`
	OrderDate      time.Time      `json:"order_date"`
	ShippingStatus ShippingStatus `json:"shipping_status"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
	ShopperOrderID int            `json:"shopper_order_id"`
	DeliveryDate   *time.Time     `json:"delivery_date,omitempty"`
}

// OrderView is an OrderItem joined with product display fields for listing.
type OrderView struct {
	OrderItem
	ProductName string `json:"product_name"`
	ImageURI    string `json:"image,omitempty"`
}

// SellerOrderView is a SellerOrder joined with product and shopper display
// fields for listing.
type SellerOrderView struct {
	SellerOrder
	ProductName string `json:"product_name"`
	ShopperName string `json:"shopper_name"`
	ImageURI    string `json:"image,omitempty"`
}

type CheckoutRequest struct {
	ProductIDs            []int `json:"product_ids"`
	SingleProductID       int   `json:"single_product_id"`
	SingleProductQuantity int   `json:"single_product_quantity"`
}

type RefundActionRequest struct {
	Action string `json:"action" binding:"required"`
}

type UpdateShippingStatusRequest struct {
	ShippingStatus ShippingStatus `json:"shipping_status" binding:"required"`
}

// OrderEvent is published to Kafka after a lifecycle transition commits.
type OrderEvent struct {
	OrderID        int            `json:"order_id"`
	ShopperID      int            `json:"shopper_id"`
	SellerID       int            `json:"seller_id"`
	ProductID      int            `json:"product_id"`
	Quantity       int            `json:"quantity"`
	TotalAmount    float64        `json:"total_amount"`
	ShippingStatus ShippingStatus `json:"shipping_status"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
	EventType      string         `json:"event_type"`
}
