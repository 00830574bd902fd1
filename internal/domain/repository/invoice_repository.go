package repository

import (
	"context"

	"github.com/facturalo/facturalo-api/internal/domain/entity"
)

// InvoiceFilter acota el listado histórico de comprobantes.
type InvoiceFilter struct {
	CbteTipo   int    // 0 = todos
	PtoVta     int    // 0 = todos
	CustomerID string // "" = todos
	Limit      int
	Offset     int
}

// InvoiceRepository define el puerto de persistencia del historial de
// comprobantes. El historial es append-only: no hay Update ni Delete.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice, items []entity.InvoiceItem) error
	GetByID(ctx context.Context, emitterCUIT, id string) (*entity.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error)

	// ListByEmitter devuelve los comprobantes de la cuenta emisora, más
	// recientes primero.
	ListByEmitter(ctx context.Context, emitterCUIT string, filter InvoiceFilter) ([]*entity.Invoice, error)
}
