package models

import "time"

type Role string

const (
	RoleShopper Role = "shopper"
	RoleSeller  Role = "seller"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleShopper || r == RoleSeller || r == RoleAdmin
}

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	StoreName    string    `json:"store_name,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      Role   `json:"role" binding:"required"`
	StoreName string `json:"store_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Principal is the authenticated identity resolved from a JWT by the auth
// middleware. Handlers never look at the token directly.
type Principal struct {
	UserID int
	Role   Role
	Active bool
}
