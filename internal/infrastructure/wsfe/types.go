package wsfe

// Auth es el ticket de acceso WSAA que acompaña cada llamada al WSFE.
type Auth struct {
	Token string `json:"wsaa_token"`
	Sign  string `json:"wsaa_sign"`
	CUIT  string `json:"cuit"`
}

// AlicIva es una entrada del array Iva del comprobante: alícuota declarada
// con su base imponible e importe.
type AlicIva struct {
	Id      int     `json:"Id"`
	BaseImp float64 `json:"BaseImp"`
	Importe float64 `json:"Importe"`
}

// CbteAsoc referencia al comprobante original en notas de crédito/débito.
type CbteAsoc struct {
	Tipo   int   `json:"Tipo"`
	PtoVta int   `json:"PtoVta"`
	Nro    int64 `json:"Nro"`
}

// CAEDetail es el detalle FECAEDetRequest tal como lo espera el WSFE.
// Los importes van como números JSON redondeados a 2 decimales.
type CAEDetail struct {
	Concepto  int    `json:"Concepto"`
	DocTipo   int    `json:"DocTipo"`
	DocNro    int64  `json:"DocNro"`
	CbteDesde int64  `json:"CbteDesde"`
	CbteHasta int64  `json:"CbteHasta"`
	CbteFch   string `json:"CbteFch"` // AAAAMMDD

	ImpTotal   float64 `json:"ImpTotal"`
	ImpTotConc float64 `json:"ImpTotConc"`
	ImpNeto    float64 `json:"ImpNeto"`
	ImpOpEx    float64 `json:"ImpOpEx"`
	ImpIVA     float64 `json:"ImpIVA"`
	ImpTrib    float64 `json:"ImpTrib"`

	CondicionIVAReceptorId int     `json:"CondicionIVAReceptorId"`
	MonId                  string  `json:"MonId"`
	MonCotiz               float64 `json:"MonCotiz"`

	// Iva se omite por completo en la familia C (no se envía array vacío).
	Iva       []AlicIva  `json:"Iva,omitempty"`
	CbtesAsoc []CbteAsoc `json:"CbtesAsoc,omitempty"`
}

// CAERequest es la cabecera de FECAESolicitar: punto de venta, tipo de
// comprobante y el detalle del lote (siempre de un solo comprobante acá).
type CAERequest struct {
	PtoVta   int       `json:"PtoVta"`
	CbteTipo int       `json:"CbteTipo"`
	Detalle  CAEDetail `json:"detalle"`
}
