package handlers

import (
	"errors"
	"net/http"

	"marketplace-svc/middleware"
	"marketplace-svc/orders"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy to HTTP statuses. Anything
// outside the taxonomy is logged and surfaced as a generic 500 so internals
// never leak to clients.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErr *orders.ValidationError
		notFoundErr   *orders.NotFoundError
		stateErr      *orders.InvalidStateError
		stockErr      *orders.InsufficientStockError
		conflictErr   *orders.ConflictError
	)
	switch {
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": err.Error()})
	case errors.As(err, &validationErr),
		errors.As(err, &stateErr),
		errors.As(err, &stockErr),
		errors.As(err, &conflictErr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
	default:
		traceID := middleware.GetTraceID(c.Request.Context())
		logger.Error("Unexpected error", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Internal server error"})
	}
}
