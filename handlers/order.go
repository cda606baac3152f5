package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"marketplace-svc/middleware"
	"marketplace-svc/models"
	"marketplace-svc/orders"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service *orders.Service
	logger  *zap.Logger
}

func NewOrderHandler(service *orders.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "Checkout")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	orderIDs, err := h.service.Checkout(ctx, principal.UserID, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	span.SetAttributes(attribute.Int("orders.created", len(orderIDs)))
	middleware.RecordCheckout(len(orderIDs))
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"message":   fmt.Sprintf("Order placed for %d item(s)", len(orderIDs)),
		"order_ids": orderIDs,
	})
}

func (h *OrderHandler) SimulatePayment(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "SimulatePayment")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid order ID"})
		return
	}
	span.SetAttributes(attribute.Int("order.id", orderID))

	if err := h.service.SimulatePayment(ctx, principal.UserID, orderID); err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Payment completed"})
}

func (h *OrderHandler) RequestCancellationOrRefund(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "RequestCancellationOrRefund")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid order ID"})
		return
	}
	span.SetAttributes(attribute.Int("order.id", orderID))

	outcome, err := h.service.RequestCancellationOrRefund(ctx, principal.UserID, orderID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	if outcome == orders.OutcomeCancelled {
		middleware.RecordCancellation()
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Order cancelled and stock restored"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Refund requested; awaiting seller approval"})
}

func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "ConfirmReceipt")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid order ID"})
		return
	}
	span.SetAttributes(attribute.Int("order.id", orderID))

	if err := h.service.ConfirmReceipt(ctx, principal.UserID, orderID); err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Order receipt confirmed"})
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetOrders")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	views, err := h.service.GetOrderItems(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if len(views) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "No orders found"})
		return
	}

	span.SetAttributes(attribute.Int("orders.count", len(views)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": views})
}

func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetOrderHistory")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	history, err := h.service.GetOrderHistory(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "No order history found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "history": history})
}

func (h *OrderHandler) GetSellerOrders(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetSellerOrders")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	views, err := h.service.GetSellerOrders(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if len(views) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "No orders found"})
		return
	}

	span.SetAttributes(attribute.Int("orders.count", len(views)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": views})
}

func (h *OrderHandler) GetSellerOrderHistory(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetSellerOrderHistory")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)

	history, err := h.service.GetSellerOrderHistory(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "No order history found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "history": history})
}

func (h *OrderHandler) HandleRefundRequest(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "HandleRefundRequest")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid order ID"})
		return
	}

	var req models.RefundActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int("order.id", orderID), attribute.String("action", req.Action))

	outcome, err := h.service.HandleRefundRequest(ctx, principal.UserID, orderID, req.Action)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	middleware.RecordRefundProcessed(req.Action)
	if outcome == orders.OutcomeRefundApproved {
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Refund approved; order cancelled and stock restored"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Refund rejected; order returned to paid status"})
}

func (h *OrderHandler) UpdateShippingStatus(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "UpdateShippingStatus")
	defer span.End()

	principal, _ := middleware.GetPrincipal(c)
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid order ID"})
		return
	}

	var req models.UpdateShippingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int("order.id", orderID), attribute.String("status", string(req.ShippingStatus)))

	so, item, err := h.service.UpdateShippingStatus(ctx, principal.UserID, orderID, req.ShippingStatus)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"message":   "Shipping status updated",
		"order":     so,
		"orderItem": item,
	})
}
