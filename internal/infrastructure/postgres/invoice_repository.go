package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// El historial es append-only: no hay UPDATE ni DELETE.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste el comprobante con sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice, items []entity.InvoiceItem) error {
	query := `
		INSERT INTO invoices (id, emitter_cuit, customer_id, cbte_tipo, pto_vta, cbte_numero,
		                      number_str, cae, cae_vto, issue_date, qr_url,
		                      imp_neto, imp_iva, imp_total, imp_tot_conc, imp_op_ex, imp_trib,
		                      customer_name, customer_tax_id, customer_address, customer_email,
		                      customer_iva_cond, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.EmitterCUIT, inv.CustomerID, inv.CbteTipo, inv.PtoVta, inv.CbteNumero,
		inv.NumberStr, inv.CAE, inv.CAEVto, inv.IssueDate, inv.QRURL,
		inv.ImpNeto, inv.ImpIVA, inv.ImpTotal, inv.ImpTotConc, inv.ImpOpEx, inv.ImpTrib,
		inv.CustomerName, nullIfEmpty(inv.CustomerTaxID), nullIfEmpty(inv.CustomerAddress),
		nullIfEmpty(inv.CustomerEmail), nullIfEmpty(inv.CustomerIVACond), inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("comprobante ya registrado: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i := range items {
		if err := r.createItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *InvoiceRepo) createItem(ctx context.Context, it *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, description, code, quantity,
		                           unit_price_input, discount_pct, tax_rate, rate_id,
		                           unit_net, unit_iva, unit_final, line_net, line_iva, line_final)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.InvoiceID, it.Description, nullIfEmpty(it.Code), it.Quantity,
		it.UnitPriceInput, it.DiscountPct, it.TaxRate, it.RateID,
		it.UnitNet, it.UnitIVA, it.UnitFinal, it.LineNet, it.LineIVA, it.LineFinal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// GetByID obtiene un comprobante por id, acotado a la cuenta emisora.
// Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, emitterCUIT, id string) (*entity.Invoice, error) {
	query := selectInvoice + ` WHERE id = $1 AND emitter_cuit = $2`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id, emitterCUIT))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetItems devuelve las líneas de un comprobante en su orden original.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, description, code, quantity,
		       unit_price_input, discount_pct, tax_rate, rate_id,
		       unit_net, unit_iva, unit_final, line_net, line_iva, line_final
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	defer rows.Close()

	var items []entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		var code *string
		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.Description, &code, &it.Quantity,
			&it.UnitPriceInput, &it.DiscountPct, &it.TaxRate, &it.RateID,
			&it.UnitNet, &it.UnitIVA, &it.UnitFinal, &it.LineNet, &it.LineIVA, &it.LineFinal,
		); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		it.Code = derefStr(code)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByEmitter devuelve el historial de la cuenta, más recientes primero.
func (r *InvoiceRepo) ListByEmitter(ctx context.Context, emitterCUIT string, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	query := selectInvoice + `
		WHERE emitter_cuit = $1
		  AND ($2 = 0 OR cbte_tipo = $2)
		  AND ($3 = 0 OR pto_vta = $3)
		  AND ($4 = '' OR customer_id::text = $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, emitterCUIT, filter.CbteTipo, filter.PtoVta, filter.CustomerID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

const selectInvoice = `
	SELECT id, emitter_cuit, customer_id, cbte_tipo, pto_vta, cbte_numero,
	       number_str, cae, cae_vto, issue_date, qr_url,
	       imp_neto, imp_iva, imp_total, imp_tot_conc, imp_op_ex, imp_trib,
	       customer_name, customer_tax_id, customer_address, customer_email,
	       customer_iva_cond, created_at
	FROM invoices`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var taxID, address, email, ivaCond *string
	err := row.Scan(
		&inv.ID, &inv.EmitterCUIT, &inv.CustomerID, &inv.CbteTipo, &inv.PtoVta, &inv.CbteNumero,
		&inv.NumberStr, &inv.CAE, &inv.CAEVto, &inv.IssueDate, &inv.QRURL,
		&inv.ImpNeto, &inv.ImpIVA, &inv.ImpTotal, &inv.ImpTotConc, &inv.ImpOpEx, &inv.ImpTrib,
		&inv.CustomerName, &taxID, &address, &email, &ivaCond, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.CustomerTaxID = derefStr(taxID)
	inv.CustomerAddress = derefStr(address)
	inv.CustomerEmail = derefStr(email)
	inv.CustomerIVACond = derefStr(ivaCond)
	return &inv, nil
}
