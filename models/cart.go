package models

type CartItem struct {
	ID        int `json:"id"`
	ShopperID int `json:"shopper_id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// CartLine is a cart item joined with its product for display.
type CartLine struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
	ImageURI    string  `json:"image,omitempty"`
}

type AddToCartRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,gt=0"`
}

type ReduceCartRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,gt=0"`
}
