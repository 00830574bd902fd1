package wsfe

import "fmt"

// ImplicitRejectionCode es el código sintético con el que se loguea un
// rechazo sin lista de errores explícita (respuesta sin CAE).
const ImplicitRejectionCode = -1

// ErrItem es un error u observación estructurada devuelta por el organismo.
type ErrItem struct {
	Code int
	Msg  string
}

// AuthorizationError indica que el organismo devolvió al menos un error
// explícito. Code y Message corresponden al primero de la lista; el resto
// queda en la respuesta parseada para el log.
type AuthorizationError struct {
	Code    int
	Message string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("arca rechazó la solicitud [%d]: %s", e.Code, e.Message)
}

// ImplicitRejectionError indica que la respuesta no trae CAE pero tampoco
// lista de errores: el organismo rechazó sin decir por qué. Observation
// lleva la observación del detalle si existe, o un mensaje genérico.
type ImplicitRejectionError struct {
	Observation string
}

func (e *ImplicitRejectionError) Error() string {
	if e.Observation != "" {
		return "comprobante rechazado sin error explícito: " + e.Observation
	}
	return "la respuesta de ARCA no contiene CAE ni errores explícitos"
}

// NetworkError envuelve una falla de transporte contra el proxy WSFE.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("wsfe %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SchemaError indica que la respuesta no coincide con ninguno de los
// esquemas conocidos del proxy. Preferimos fallar fuerte antes que tratar
// la ausencia de campos como "sin error".
type SchemaError struct {
	Op string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("wsfe %s: la respuesta no coincide con ningún esquema conocido", e.Op)
}
