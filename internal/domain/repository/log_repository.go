package repository

import (
	"context"
	"time"
)

// WSFELog es un registro del historial de intentos contra el servicio de
// autorización: intentos exitosos, errores explícitos del organismo, rechazos
// implícitos y fallas de red o de esquema.
type WSFELog struct {
	ID        string
	Source    string    // "wsfe-cae" | "wsfe-error" | "wsfe-implicit-rejection" | "wsfe-network" | "wsfe-schema"
	Message   string
	ErrorCode string
	CUIT      string
	CbteTipo  int
	PtoVta    int
	Request   []byte    // solicitud cruda enviada al WSFE
	Response  []byte    // respuesta cruda recibida, para diagnóstico
	CreatedAt time.Time
}

// WSFELogRepository define el puerto de persistencia del historial de
// intentos de autorización. La escritura es best-effort: sus propios errores
// nunca se propagan al flujo de facturación.
type WSFELogRepository interface {
	Create(ctx context.Context, l *WSFELog) error
	ListByCUIT(ctx context.Context, cuit string, limit int) ([]*WSFELog, error)
}
