package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"marketplace-svc/models"
	"marketplace-svc/orders"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AdminHandler struct {
	db           *sql.DB
	orderService *orders.Service
	logger       *zap.Logger
}

func NewAdminHandler(db *sql.DB, orderService *orders.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		db:           db,
		orderService: orderService,
		logger:       logger,
	}
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "GetUsers")
	defer span.End()

	rows, err := h.db.QueryContext(ctx,
		"SELECT id, name, email, role, store_name, active, created_at FROM users ORDER BY id")
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.StoreName, &u.Active, &u.CreatedAt); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan user", zap.Error(err))
			continue
		}
		users = append(users, u)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": users})
}

func (h *AdminHandler) SetUserActive(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "SetUserActive")
	defer span.End()

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid user ID"})
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int("user.id", userID), attribute.Bool("active", req.Active))

	res, err := h.db.ExecContext(ctx,
		"UPDATE users SET active = $1 WHERE id = $2", req.Active, userID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "User not found"})
		return
	}

	h.logger.Info("User active flag updated",
		zap.Int("user_id", userID),
		zap.Bool("active", req.Active))
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "User updated"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace").Start(c.Request.Context(), "DeleteUser")
	defer span.End()

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid user ID"})
		return
	}
	span.SetAttributes(attribute.Int("user.id", userID))

	// Users on either side of a live order cannot be removed.
	hasOpen, err := h.orderService.UserHasOpenOrders(ctx, userID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if hasOpen {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "User has open orders and cannot be deleted"})
		return
	}

	res, err := h.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		span.RecordError(err)
		respondError(c, h.logger, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "User not found"})
		return
	}

	h.logger.Info("User deleted", zap.Int("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "User deleted"})
}
