package handlers

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace-svc/cache"
	"marketplace-svc/circuitbreaker"
	"marketplace-svc/middleware"
	"marketplace-svc/models"
	"marketplace-svc/orders"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ProductHandler struct {
	db             *sql.DB
	redisClient    *redis.Client
	orderService   *orders.Service
	logger         *zap.Logger
	circuitBreaker *circuitbreaker.CircuitBreaker
}

func NewProductHandler(db *sql.DB, redisClient *redis.Client, orderService *orders.Service, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		db:           db,
		redisClient:  redisClient,
		orderService: orderService,
		logger:       logger,
		circuitBreaker: circuitbreaker.NewCircuitBreaker(5, 30*time.Second).
			WithExpectedErrors(func(err error) bool { return errors.Is(err, sql.ErrNoRows) }),
	}
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetProducts")
	defer span.End()

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, seller_id, name, price, stock, description, image, image_mime, expiry_date, created_at, updated_at
		 FROM products ORDER BY id`)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var mime *string
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Price, &p.Stock, &p.Description,
			&p.Image, &mime, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan product", zap.Error(err))
			continue
		}
		if mime != nil {
			p.ImageURI = models.ImageDataURI(*mime, p.Image)
		}
		p.Image = nil
		products = append(products, p)
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "products": products})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	// Try to get from cache first
	cachedData, err := cache.GetProduct(ctx, h.redisClient, id)
	if err == nil {
		var product models.Product
		if err := json.Unmarshal(cachedData, &product); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			c.JSON(http.StatusOK, gin.H{"ok": true, "product": product})
			return
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// Get from database with circuit breaker
	var product models.Product
	var mime *string
	dbErr := h.circuitBreaker.Execute(ctx, func() error {
		return h.db.QueryRowContext(ctx,
			`SELECT id, seller_id, name, price, stock, description, image, image_mime, expiry_date, created_at, updated_at
			 FROM products WHERE id = $1`,
			id,
		).Scan(&product.ID, &product.SellerID, &product.Name, &product.Price, &product.Stock,
			&product.Description, &product.Image, &mime, &product.ExpiryDate,
			&product.CreatedAt, &product.UpdatedAt)
	})
	if dbErr != nil {
		if errors.Is(dbErr, circuitbreaker.ErrCircuitOpen) {
			span.SetAttributes(attribute.String("circuit.state", "open"))
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": "Service temporarily unavailable"})
			return
		}
		if errors.Is(dbErr, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Product not found"})
			return
		}
		span.RecordError(dbErr)
		respondError(c, h.logger, dbErr)
		return
	}
	if mime != nil {
		product.ImageURI = models.ImageDataURI(*mime, product.Image)
	}
	product.Image = nil

	// Cache the product for 5 minutes
	cache.SetProduct(ctx, h.redisClient, id, product, 5*time.Minute)

	c.JSON(http.StatusOK, gin.H{"ok": true, "product": product})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "CreateProduct")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	var image []byte
	if req.Image != "" {
		var err error
		image, err = base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "image must be base64 encoded"})
			return
		}
	}

	var product models.Product
	err := h.db.QueryRowContext(ctx,
		`INSERT INTO products (seller_id, name, price, stock, description, image, image_mime, expiry_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, seller_id, name, price, stock, description, expiry_date, created_at, updated_at`,
		principal.UserID, req.Name, req.Price, req.Stock, req.Description,
		image, nullString(req.ImageMime), req.ExpiryDate,
	).Scan(&product.ID, &product.SellerID, &product.Name, &product.Price, &product.Stock,
		&product.Description, &product.ExpiryDate, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	span.SetAttributes(attribute.Int("product.id", product.ID))
	h.logger.Info("Product created",
		zap.Int("product_id", product.ID),
		zap.Int("seller_id", principal.UserID))
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Product created", "product": product})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "UpdateProduct")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)
	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	// Build update query dynamically
	query := "UPDATE products SET updated_at = CURRENT_TIMESTAMP"
	args := []interface{}{}
	argPos := 1

	if req.Name != "" {
		query += ", name = $" + strconv.Itoa(argPos)
		args = append(args, req.Name)
		argPos++
	}
	if req.Price > 0 {
		query += ", price = $" + strconv.Itoa(argPos)
		args = append(args, req.Price)
		argPos++
	}
	if req.Stock != nil {
		query += ", stock = $" + strconv.Itoa(argPos)
		args = append(args, *req.Stock)
		argPos++
	}
	if req.Description != "" {
		query += ", description = $" + strconv.Itoa(argPos)
		args = append(args, req.Description)
		argPos++
	}

	query += " WHERE id = $" + strconv.Itoa(argPos) + " AND seller_id = $" + strconv.Itoa(argPos+1) +
		" RETURNING id, seller_id, name, price, stock, description, expiry_date, created_at, updated_at"
	args = append(args, id, principal.UserID)

	var product models.Product
	err := h.db.QueryRowContext(ctx, query, args...).Scan(
		&product.ID, &product.SellerID, &product.Name, &product.Price, &product.Stock,
		&product.Description, &product.ExpiryDate, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Product not found"})
			return
		}
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	// Invalidate cache
	cache.DeleteProduct(ctx, h.redisClient, id)

	h.logger.Info("Product updated", zap.String("product_id", id))
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Product updated", "product": product})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "DeleteProduct")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)
	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	productID, err := strconv.Atoi(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid product ID"})
		return
	}

	// A product with live orders cannot be removed; history rows carry
	// their own copy and survive the delete once orders close.
	hasOpen, err := h.orderService.ProductHasOpenOrders(ctx, productID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if hasOpen {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Product has open orders and cannot be deleted"})
		return
	}

	result, err := h.db.ExecContext(ctx,
		"DELETE FROM products WHERE id = $1 AND seller_id = $2", productID, principal.UserID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Product not found"})
		return
	}

	// Invalidate cache
	cache.DeleteProduct(ctx, h.redisClient, id)

	h.logger.Info("Product deleted", zap.String("product_id", id))
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Product deleted successfully"})
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
