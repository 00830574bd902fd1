package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleFacturador = "facturador"
)

// User representa un usuario del sistema (pertenece a una cuenta emisora, identificada por CUIT).
type User struct {
	ID           string
	EmitterCUIT  string
	Email        string
	PasswordHash string    // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string    // admin, facturador
	Status       string    // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
