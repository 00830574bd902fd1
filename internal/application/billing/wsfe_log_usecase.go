package billing

import (
	"context"

	"github.com/facturalo/facturalo-api/internal/application/dto"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
)

// WSFELogUseCase consulta del historial de intentos de autorización de la
// cuenta emisora: éxitos, rechazos y fallas, con los cuerpos crudos.
type WSFELogUseCase struct {
	logRepo repository.WSFELogRepository
}

// NewWSFELogUseCase construye el caso de uso del historial de intentos.
func NewWSFELogUseCase(logRepo repository.WSFELogRepository) *WSFELogUseCase {
	return &WSFELogUseCase{logRepo: logRepo}
}

// List devuelve los intentos más recientes de la cuenta emisora.
func (uc *WSFELogUseCase) List(ctx context.Context, emitterCUIT string, limit int) ([]dto.WSFELogResponse, error) {
	logs, err := uc.logRepo.ListByCUIT(ctx, emitterCUIT, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WSFELogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.WSFELogResponse{
			ID:        l.ID,
			Source:    l.Source,
			Message:   l.Message,
			ErrorCode: l.ErrorCode,
			CbteTipo:  l.CbteTipo,
			PtoVta:    l.PtoVta,
			Request:   string(l.Request),
			Response:  string(l.Response),
			CreatedAt: l.CreatedAt,
		})
	}
	return out, nil
}
