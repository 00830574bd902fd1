package postgres

import (
	"context"
	"fmt"

	"github.com/facturalo/facturalo-api/internal/domain/repository"
)

var _ repository.WSFELogRepository = (*WSFELogRepo)(nil)

// WSFELogRepo implementación de WSFELogRepository sobre la tabla wsfe_logs.
type WSFELogRepo struct {
	q Querier
}

// NewWSFELogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWSFELogRepository(q Querier) *WSFELogRepo {
	return &WSFELogRepo{q: q}
}

// Create persiste un registro de intento.
func (r *WSFELogRepo) Create(ctx context.Context, l *repository.WSFELog) error {
	query := `
		INSERT INTO wsfe_logs (id, source, message, error_code, cuit, cbte_tipo, pto_vta, request_body, response_body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.Source, nullIfEmpty(l.Message), nullIfEmpty(l.ErrorCode),
		l.CUIT, l.CbteTipo, l.PtoVta, l.Request, l.Response, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wsfe log: %w", err)
	}
	return nil
}

// ListByCUIT devuelve los registros más recientes de la cuenta emisora.
func (r *WSFELogRepo) ListByCUIT(ctx context.Context, cuit string, limit int) ([]*repository.WSFELog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, source, message, error_code, cuit, cbte_tipo, pto_vta, request_body, response_body, created_at
		FROM wsfe_logs WHERE cuit = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, cuit, limit)
	if err != nil {
		return nil, fmt.Errorf("list wsfe logs: %w", err)
	}
	defer rows.Close()

	var out []*repository.WSFELog
	for rows.Next() {
		var l repository.WSFELog
		var msg, code *string
		if err := rows.Scan(&l.ID, &l.Source, &msg, &code, &l.CUIT, &l.CbteTipo, &l.PtoVta, &l.Request, &l.Response, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wsfe log: %w", err)
		}
		l.Message = derefStr(msg)
		l.ErrorCode = derefStr(code)
		out = append(out, &l)
	}
	return out, rows.Err()
}
