package model

import "time"

// UserRole is a closed set; every authorization check switches over it
// exhaustively instead of comparing raw strings.
type UserRole string

const (
	UserRoleClient UserRole = "client"
	UserRoleVendor UserRole = "vendor"
	UserRoleAdmin  UserRole = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleClient, UserRoleVendor, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Password       string    `json:"-" db:"password"`
	Role           UserRole  `json:"role" db:"role"`
	WhatsappNumber string    `json:"whatsappNumber,omitempty" db:"whatsapp_number"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type RegisterRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	Role           UserRole `json:"role"`
	WhatsappNumber string   `json:"whatsappNumber"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// TokenClaims is what the access guard attaches to the request context.
// The token is self-contained: the role claim stays authoritative until
// expiry even if the user row changes afterwards.
type TokenClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
}
