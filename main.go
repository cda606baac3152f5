package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-svc/cache"
	"marketplace-svc/database"
	"marketplace-svc/handlers"
	"marketplace-svc/kafka"
	"marketplace-svc/middleware"
	"marketplace-svc/models"
	"marketplace-svc/orders"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.InitDB(logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := cache.InitRedis(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing("marketplace")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	orderService := orders.NewService(db, producer, logger)

	// Setup REST API with Gin
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("marketplace"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	authHandler := handlers.NewAuthHandler(db, logger)
	productHandler := handlers.NewProductHandler(db, redisClient, orderService, logger)
	cartHandler := handlers.NewCartHandler(db, logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	adminHandler := handlers.NewAdminHandler(db, orderService, logger)

	// Public endpoints
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/products", productHandler.GetProducts)
	router.GET("/products/:id", productHandler.GetProduct)

	// Shopper endpoints
	shopper := router.Group("/", middleware.AuthMiddleware(), middleware.RequireRole(models.RoleShopper))
	{
		shopper.GET("/cart", cartHandler.GetCart)
		shopper.POST("/cart", cartHandler.AddToCart)
		shopper.POST("/cart/reduce", cartHandler.ReduceCartItem)
		shopper.DELETE("/cart/:productId", cartHandler.RemoveCartItem)

		shopper.POST("/orders/checkout", orderHandler.Checkout)
		shopper.POST("/orders/:id/payment", orderHandler.SimulatePayment)
		shopper.POST("/orders/:id/cancel", orderHandler.RequestCancellationOrRefund)
		shopper.POST("/orders/:id/confirm", orderHandler.ConfirmReceipt)
		shopper.GET("/orders", orderHandler.GetOrders)
		shopper.GET("/orders/history", orderHandler.GetOrderHistory)
	}

	// Seller endpoints
	seller := router.Group("/seller", middleware.AuthMiddleware(), middleware.RequireRole(models.RoleSeller))
	{
		seller.POST("/products", productHandler.CreateProduct)
		seller.PUT("/products/:id", productHandler.UpdateProduct)
		seller.DELETE("/products/:id", productHandler.DeleteProduct)

		seller.GET("/orders", orderHandler.GetSellerOrders)
		seller.GET("/orders/history", orderHandler.GetSellerOrderHistory)
		seller.PATCH("/orders/:id/status", orderHandler.UpdateShippingStatus)
		seller.POST("/orders/:id/refund", orderHandler.HandleRefundRequest)
	}

	// Admin endpoints
	admin := router.Group("/admin", middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", adminHandler.GetUsers)
		admin.PATCH("/users/:id/active", adminHandler.SetUserActive)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
	}

	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start REST server", zap.Error(err))
		}
	}()

	logger.Info("Marketplace REST API started", zap.String("addr", srv.Addr))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
