package dto

import "time"

// RegisterRequest body para POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	CUIT     string `json:"cuit"` // CUIT de la cuenta emisora
	Role     string `json:"role,omitempty"`
}

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse usuario en respuestas (sin hash de password).
type UserResponse struct {
	ID        string    `json:"id"`
	CUIT      string    `json:"cuit"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse token + usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
