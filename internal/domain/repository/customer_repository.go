package repository

import (
	"context"

	"github.com/facturalo/facturalo-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia de clientes.
// Todos los accesos están acotados por la cuenta emisora (CUIT).
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, emitterCUIT, id string) (*entity.Customer, error)
	ListByEmitter(ctx context.Context, emitterCUIT string) ([]*entity.Customer, error)
	Update(ctx context.Context, c *entity.Customer) error
}
