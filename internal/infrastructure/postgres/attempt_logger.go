package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/facturalo/facturalo-api/internal/application/billing"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
	"github.com/facturalo/facturalo-api/pkg/logger"
)

var _ billing.AttemptLogger = (*AttemptLogger)(nil)

// AttemptLogger persiste cada intento de autorización WSFE en wsfe_logs. Es
// best-effort: si la escritura falla solo queda constancia en el log
// estructurado, nunca interrumpe el flujo de facturación.
type AttemptLogger struct {
	repo repository.WSFELogRepository
	log  *logger.Logger
}

// NewAttemptLogger construye el adaptador.
func NewAttemptLogger(repo repository.WSFELogRepository, log *logger.Logger) *AttemptLogger {
	return &AttemptLogger{repo: repo, log: log}
}

// LogAttempt registra el intento en DB y en el log estructurado.
func (a *AttemptLogger) LogAttempt(ctx context.Context, rec billing.AttemptRecord) {
	ev := a.log.Warn()
	if rec.Source == "wsfe-cae" {
		ev = a.log.Info()
	}
	ev.
		Str("source", rec.Source).
		Str("error_code", rec.ErrorCode).
		Str("cuit", rec.CUIT).
		Int("cbte_tipo", rec.CbteTipo).
		Int("pto_vta", rec.PtoVta).
		Msg(rec.Message)

	err := a.repo.Create(ctx, &repository.WSFELog{
		ID:        uuid.New().String(),
		Source:    rec.Source,
		Message:   rec.Message,
		ErrorCode: rec.ErrorCode,
		CUIT:      rec.CUIT,
		CbteTipo:  rec.CbteTipo,
		PtoVta:    rec.PtoVta,
		Request:   rec.Request,
		Response:  rec.Response,
		CreatedAt: time.Now(),
	})
	if err != nil {
		a.log.Error().Err(err).Msg("no se pudo persistir el registro de intento wsfe")
	}
}
