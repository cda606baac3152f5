package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"marketplace-svc/middleware"
	"marketplace-svc/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type CartHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCartHandler(db *sql.DB, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		db:     db,
		logger: logger,
	}
}

// AddToCart upserts a cart line: an existing (shopper, product) line has
// its quantity incremented.
func (h *CartHandler) AddToCart(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "AddToCart")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	span.SetAttributes(
		attribute.Int("product_id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	var productID int
	err := h.db.QueryRowContext(ctx, "SELECT id FROM products WHERE id = $1", req.ProductID).Scan(&productID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Product not found"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO cart_items (shopper_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (shopper_id, product_id) DO UPDATE SET quantity = cart_items.quantity + $3`,
		principal.UserID, req.ProductID, req.Quantity)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Added to cart",
		zap.Int("shopper_id", principal.UserID),
		zap.Int("product_id", req.ProductID))
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Added to cart"})
}

// ReduceCartItem decrements a line's quantity; the line is removed when it
// reaches zero.
func (h *CartHandler) ReduceCartItem(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "ReduceCartItem")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	var req models.ReduceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	res, err := h.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = quantity - $1 WHERE shopper_id = $2 AND product_id = $3 AND quantity > $1",
		req.Quantity, principal.UserID, req.ProductID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Quantity would hit zero or below: drop the line.
		res, err = h.db.ExecContext(ctx,
			"DELETE FROM cart_items WHERE shopper_id = $1 AND product_id = $2",
			principal.UserID, req.ProductID)
		if err != nil {
			span.RecordError(err)
			respondError(c, h.logger, err)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Cart item not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Cart updated"})
}

func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "RemoveCartItem")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid product ID"})
		return
	}

	res, err := h.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE shopper_id = $1 AND product_id = $2",
		principal.UserID, productID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Removed from cart"})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetCart")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	rows, err := h.db.QueryContext(ctx,
		`SELECT ci.product_id, p.name, p.price, ci.quantity, p.image, p.image_mime
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.shopper_id = $1
		 ORDER BY ci.id`, principal.UserID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		var image []byte
		var mime *string
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Price, &line.Quantity, &image, &mime); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan cart line", zap.Error(err))
			continue
		}
		line.Subtotal = line.Price * float64(line.Quantity)
		if mime != nil {
			line.ImageURI = models.ImageDataURI(*mime, image)
		}
		lines = append(lines, line)
	}

	span.SetAttributes(attribute.Int("cart.lines", len(lines)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "cart": lines})
}
