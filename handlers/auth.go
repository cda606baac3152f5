package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"marketplace-svc/middleware"
	"marketplace-svc/models"
	"marketplace-svc/orders"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAuthHandler(db *sql.DB, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		db:     db,
		logger: logger,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	if req.Role != models.RoleShopper && req.Role != models.RoleSeller {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Role must be shopper or seller"})
		return
	}

	// Check if user already exists
	var existingID int
	err := h.db.QueryRow("SELECT id FROM users WHERE email = $1", req.Email).Scan(&existingID)
	if err == nil {
		respondError(c, h.logger, &orders.ConflictError{Msg: "email already in use"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		respondError(c, h.logger, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var user models.User
	err = h.db.QueryRow(
		`INSERT INTO users (name, email, password_hash, role, store_name, active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING id, name, email, role, store_name, active, created_at`,
		req.Name, req.Email, string(hashedPassword), req.Role, req.StoreName,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.StoreName, &user.Active, &user.CreatedAt)
	if err != nil {
		// A concurrent registration can slip past the existence check; the
		// unique index on email is the real guard.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			respondError(c, h.logger, &orders.ConflictError{Msg: "email already in use"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	traceID := middleware.GetTraceID(c.Request.Context())
	h.logger.Info("User registered",
		zap.String("trace_id", traceID),
		zap.String("email", req.Email),
		zap.String("role", string(req.Role)))
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Registration successful", "user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		return
	}

	var user models.User
	err := h.db.QueryRow(
		`SELECT id, name, email, password_hash, role, store_name, active, created_at
		 FROM users WHERE email = $1`,
		req.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.StoreName, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Invalid credentials"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Invalid credentials"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "Account is deactivated"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"active":  user.Active,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(middleware.JWTSecret())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	traceID := middleware.GetTraceID(c.Request.Context())
	h.logger.Info("User logged in", zap.String("trace_id", traceID), zap.String("email", req.Email))
	c.JSON(http.StatusOK, models.LoginResponse{
		OK:    true,
		Token: tokenString,
		User:  user,
	})
}
