package entity

import "time"

// Customer representa un cliente de la cuenta emisora (CRM de facturación).
type Customer struct {
	ID           string
	EmitterCUIT  string    // cuenta emisora a la que pertenece
	Name         string
	TaxID        string    // CUIT, CUIL, DNI o vacío (consumidor final)
	IVACondition string    // "Responsable Inscripto" | "Monotributista" | "Exento" | "Consumidor Final" | ...
	Address      string
	Email        string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
