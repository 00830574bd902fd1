package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturalo/facturalo-api/internal/domain"
	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, emitter_cuit, name, tax_id, iva_condition, address, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.EmitterCUIT, c.Name, nullIfEmpty(c.TaxID), c.IVACondition,
		nullIfEmpty(c.Address), nullIfEmpty(c.Email), nullIfEmpty(c.Phone),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente, acotado a la cuenta emisora. (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, emitterCUIT, id string) (*entity.Customer, error) {
	query := selectCustomer + ` WHERE id = $1 AND emitter_cuit = $2`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id, emitterCUIT))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// ListByEmitter devuelve los clientes de la cuenta, ordenados por nombre.
func (r *CustomerRepo) ListByEmitter(ctx context.Context, emitterCUIT string) ([]*entity.Customer, error) {
	query := selectCustomer + ` WHERE emitter_cuit = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, emitterCUIT)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update actualiza los datos de contacto y fiscales del cliente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers
		SET name = $3, tax_id = $4, iva_condition = $5, address = $6, email = $7, phone = $8, updated_at = $9
		WHERE id = $1 AND emitter_cuit = $2`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.EmitterCUIT, c.Name, nullIfEmpty(c.TaxID), c.IVACondition,
		nullIfEmpty(c.Address), nullIfEmpty(c.Email), nullIfEmpty(c.Phone), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectCustomer = `
	SELECT id, emitter_cuit, name, tax_id, iva_condition, address, email, phone, created_at, updated_at
	FROM customers`

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	var taxID, address, email, phone *string
	err := row.Scan(
		&c.ID, &c.EmitterCUIT, &c.Name, &taxID, &c.IVACondition,
		&address, &email, &phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.TaxID = derefStr(taxID)
	c.Address = derefStr(address)
	c.Email = derefStr(email)
	c.Phone = derefStr(phone)
	return &c, nil
}
