package dto

import "time"

// WSFELogResponse es un registro del historial de intentos contra el WSFE.
// Los cuerpos crudos se exponen como texto: son JSON del proxy, pero ante una
// respuesta malformada igual tienen que poder mostrarse.
type WSFELogResponse struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Message   string    `json:"message,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	CbteTipo  int       `json:"cbte_tipo"`
	PtoVta    int       `json:"pto_vta"`
	Request   string    `json:"request,omitempty"`
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
