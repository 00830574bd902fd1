package billing

import (
	"context"
	"encoding/json"

	"github.com/facturalo/facturalo-api/internal/domain/tax"
	"github.com/facturalo/facturalo-api/internal/infrastructure/wsfe"
)

// Credentials es el ticket WSAA vigente más el CUIT emisor. Lo resuelve la
// capa de sesión antes de cada intento; el orquestador solo lo lee.
type Credentials struct {
	Token string
	Sign  string
	CUIT  string
}

// PointOfSale es el punto de venta habilitado en ARCA.
type PointOfSale struct {
	Number         int
	NombreFantasia string
	Domicilio      string
}

// Account son los datos del emisor que van al encabezado del comprobante.
type Account struct {
	RazonSocial     string
	NombreFantasia  string
	Domicilio       string
	Telefono        string
	CondicionIVA    string
	IIBB            string
	InicioActividad string
}

// Session es la foto inmutable del estado de sesión que necesita un intento
// de facturación. Se arma por request, nunca se muta durante el intento, y
// hace al orquestador testeable sin estado ambiente.
type Session struct {
	Credentials Credentials
	ActivePoint *PointOfSale
	Account     Account
}

// AuthorizationService es el puerto de salida hacia el WSFE. La respuesta
// de SolicitarCAE se devuelve cruda: solo el parser sabe interpretarla.
type AuthorizationService interface {
	UltimoAutorizado(ctx context.Context, auth wsfe.Auth, ptoVta, cbteTipo int) (int64, error)
	SolicitarCAE(ctx context.Context, auth wsfe.Auth, req wsfe.CAERequest) (json.RawMessage, error)
}

// SellerInfo bloque del emisor en el documento impreso.
type SellerInfo struct {
	RazonSocial    string
	NombreFantasia string
	Domicilio      string
	Telefono       string
	CondicionIVA   string
}

// HeaderInfo bloque de cabecera: identidad del comprobante y autorización.
type HeaderInfo struct {
	CbteTipo        int
	Letter          string
	Title           string
	NumberStr       string
	Date            string // DD/MM/AAAA
	CAE             string
	CAEVto          string
	CUIT            string // formateado NN-NNNNNNNN-N
	IIBB            string
	InicioActividad string
	QRURL           string
}

// CustomerInfo bloque del receptor en el documento impreso.
type CustomerInfo struct {
	Name         string
	TaxID        string
	Domicilio    string
	CondicionIVA string
	CondVenta    string
}

// DocumentPayload es todo lo que necesita el renderer para producir el PDF.
type DocumentPayload struct {
	Seller     SellerInfo
	Header     HeaderInfo
	Customer   CustomerInfo
	Items      []tax.ComputedLine
	FooterHTML string
}

// InvoicePDFGenerator es el puerto de salida hacia el renderer.
type InvoicePDFGenerator interface {
	Render(payload DocumentPayload) ([]byte, error)
}

// AttemptRecord es el registro estructurado de un intento de autorización
// contra el WSFE: se guarda cada intento, exitoso o no, con la solicitud y
// la respuesta crudas para auditoría y diagnóstico.
type AttemptRecord struct {
	Source    string
	Message   string
	ErrorCode string
	CUIT      string
	CbteTipo  int
	PtoVta    int
	Request   []byte
	Response  []byte
}

// AttemptLogger persiste el historial de intentos best-effort: sus propios
// errores nunca interrumpen el flujo.
type AttemptLogger interface {
	LogAttempt(ctx context.Context, rec AttemptRecord)
}
