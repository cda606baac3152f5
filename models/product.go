package models

import (
	"encoding/base64"
	"time"
)

type Product struct {
	ID          int        `json:"id"`
	SellerID    int        `json:"seller_id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	Description string     `json:"description"`
	Image       []byte     `json:"-"`
	ImageMime   string     `json:"-"`
	ImageURI    string     `json:"image,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateProductRequest struct {
	Name        string     `json:"name" binding:"required"`
	Price       float64    `json:"price" binding:"required,gte=0"`
	Stock       int        `json:"stock" binding:"gte=0"`
	Description string     `json:"description"`
	Image       string     `json:"image"` // base64
	ImageMime   string     `json:"image_mime"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

// UpdateProductRequest carries a partial update. Stock is a pointer so an
// omitted field can be told apart from an explicit zero.
type UpdateProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       *int    `json:"stock" binding:"omitempty,gte=0"`
	Description string  `json:"description"`
}

// ImageDataURI renders a stored image blob as a data-URI string. Images
// cross the API boundary only in this form, never as raw binary.
func ImageDataURI(mime string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
