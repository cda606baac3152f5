package models

import "time"

// OrderHistory is the shopper-side archive row for a terminated order pair.
// Product and seller fields are denormalized at archival time so the row
// survives later deletion of the product or counterparty.
type OrderHistory struct {
	ID                 int            `json:"id"`
	ShopperID          int            `json:"shopper_id"`
	ProductName        string         `json:"product_name"`
	ProductPrice       float64        `json:"product_price"`
	ProductDescription string         `json:"product_description"`
	SellerName         string         `json:"seller_name"`
	StoreName          string         `json:"store_name"`
	Quantity           int            `json:"quantity"`
	TotalAmount        float64        `json:"total_amount"`
	ShippingStatus     ShippingStatus `json:"shipping_status"`
	PaymentStatus      PaymentStatus  `json:"payment_status"`
	OrderDate          time.Time      `json:"order_date"`
	ArchivedAt         time.Time      `json:"archived_at"`
}

// SellerOrderHistory is the seller-side archive row.
type SellerOrderHistory struct {
	ID                 int            `json:"id"`
	SellerID           int            `json:"seller_id"`
	ProductName        string         `json:"product_name"`
	ProductPrice       float64        `json:"product_price"`
	ProductDescription string         `json:"product_description"`
	ShopperName        string         `json:"shopper_name"`
	ShopperEmail       string         `json:"shopper_email"`
	Quantity           int            `json:"quantity"`
	TotalAmount        float64        `json:"total_amount"`
	ShippingStatus     ShippingStatus `json:"shipping_status"`
	PaymentStatus      PaymentStatus  `json:"payment_status"`
	OrderDate          time.Time      `json:"order_date"`
	ArchivedAt         time.Time      `json:"archived_at"`
}
