package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles the identity provider may put in a token. Shoppers carry none.
const (
	RoleFulfilment = "fulfilment"
	RoleAdmin      = "admin"
)

// Claims are issued by the identity provider; this service only verifies them.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// CanManageOrders reports whether the token may move orders through fulfilment.
func (c *Claims) CanManageOrders() bool {
	return c.Role == RoleFulfilment || c.Role == RoleAdmin
}
