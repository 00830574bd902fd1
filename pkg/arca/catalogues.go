// Package arca contiene catálogos y clasificadores alineados al manual del
// desarrollador WSFEv1 de AFIP/ARCA (RG 4291 y modificatorias). Las tablas de
// códigos son datos, no lógica: agregar un código nuevo no toca funciones.
package arca

// =============================================================================
// Tipos de comprobante (CbteTipo) — tabla de comprobantes WSFEv1.
// Cada clase lleva el código numérico AFIP, la letra fiscal y el título que se
// imprime en la representación gráfica.
// =============================================================================

const (
	CbteFacturaA  = 1
	CbteNotaDebA  = 2
	CbteNotaCredA = 3
	CbteFacturaB  = 6
	CbteNotaDebB  = 7
	CbteNotaCredB = 8
	CbteFacturaC  = 11
	CbteNotaDebC  = 12
	CbteNotaCredC = 13

	// Factura de Crédito Electrónica MiPyMEs (FCE, Ley 27.440).
	CbteFCEFacturaA  = 201
	CbteFCENotaDebA  = 202
	CbteFCENotaCredA = 203
	CbteFCEFacturaB  = 206
	CbteFCENotaDebB  = 207
	CbteFCENotaCredB = 208
	CbteFCEFacturaC  = 211
	CbteFCENotaDebC  = 212
	CbteFCENotaCredC = 213
)

// Títulos de comprobante para la representación impresa.
const (
	TitleFactura  = "FACTURA"
	TitleNotaDeb  = "NOTA DE DÉBITO"
	TitleNotaCred = "NOTA DE CRÉDITO"
	TitleFCE      = "FACTURA DE CRÉDITO ELECTRÓNICA MiPyMEs"
)

// Kind distingue facturas de notas de débito/crédito.
type Kind int

const (
	KindFactura Kind = iota
	KindNotaDebito
	KindNotaCredito
)

// InvoiceClass describe un tipo de comprobante AFIP.
type InvoiceClass struct {
	Code   int    // CbteTipo
	Letter string // "A" | "B" | "C"
	Title  string
	Kind   Kind
	FCE    bool // Factura de Crédito Electrónica MiPyMEs
}

// ExplicitNet indica si los precios se cargan netos (sin IVA) y el impuesto se
// agrega; para las clases B y C el precio cargado es final y el IVA se extrae.
func (c InvoiceClass) ExplicitNet() bool { return c.Letter == "A" }

// OmitsVatBreakdown indica si el comprobante informa montos sin discriminar
// IVA ante AFIP (familia C): ImpIVA se fuerza a 0, ImpNeto = ImpTotal y el
// arreglo AlicIva se omite por completo.
func (c InvoiceClass) OmitsVatBreakdown() bool { return c.Letter == "C" }

// IsNote indica si el comprobante es una nota de crédito o débito.
func (c InvoiceClass) IsNote() bool { return c.Kind != KindFactura }

// invoiceClasses tabla de clases soportadas, indexada por CbteTipo.
var invoiceClasses = map[int]InvoiceClass{
	CbteFacturaA:  {Code: CbteFacturaA, Letter: "A", Title: TitleFactura, Kind: KindFactura},
	CbteNotaDebA:  {Code: CbteNotaDebA, Letter: "A", Title: TitleNotaDeb, Kind: KindNotaDebito},
	CbteNotaCredA: {Code: CbteNotaCredA, Letter: "A", Title: TitleNotaCred, Kind: KindNotaCredito},
	CbteFacturaB:  {Code: CbteFacturaB, Letter: "B", Title: TitleFactura, Kind: KindFactura},
	CbteNotaDebB:  {Code: CbteNotaDebB, Letter: "B", Title: TitleNotaDeb, Kind: KindNotaDebito},
	CbteNotaCredB: {Code: CbteNotaCredB, Letter: "B", Title: TitleNotaCred, Kind: KindNotaCredito},
	CbteFacturaC:  {Code: CbteFacturaC, Letter: "C", Title: TitleFactura, Kind: KindFactura},
	CbteNotaDebC:  {Code: CbteNotaDebC, Letter: "C", Title: TitleNotaDeb, Kind: KindNotaDebito},
	CbteNotaCredC: {Code: CbteNotaCredC, Letter: "C", Title: TitleNotaCred, Kind: KindNotaCredito},

	CbteFCEFacturaA:  {Code: CbteFCEFacturaA, Letter: "A", Title: TitleFCE, Kind: KindFactura, FCE: true},
	CbteFCENotaDebA:  {Code: CbteFCENotaDebA, Letter: "A", Title: TitleNotaDeb, Kind: KindNotaDebito, FCE: true},
	CbteFCENotaCredA: {Code: CbteFCENotaCredA, Letter: "A", Title: TitleNotaCred, Kind: KindNotaCredito, FCE: true},
	CbteFCEFacturaB:  {Code: CbteFCEFacturaB, Letter: "B", Title: TitleFCE, Kind: KindFactura, FCE: true},
	CbteFCENotaDebB:  {Code: CbteFCENotaDebB, Letter: "B", Title: TitleNotaDeb, Kind: KindNotaDebito, FCE: true},
	CbteFCENotaCredB: {Code: CbteFCENotaCredB, Letter: "B", Title: TitleNotaCred, Kind: KindNotaCredito, FCE: true},
	CbteFCEFacturaC:  {Code: CbteFCEFacturaC, Letter: "C", Title: TitleFCE, Kind: KindFactura, FCE: true},
	CbteFCENotaDebC:  {Code: CbteFCENotaDebC, Letter: "C", Title: TitleNotaDeb, Kind: KindNotaDebito, FCE: true},
	CbteFCENotaCredC: {Code: CbteFCENotaCredC, Letter: "C", Title: TitleNotaCred, Kind: KindNotaCredito, FCE: true},
}

// ClassByCode devuelve la clase de comprobante para un CbteTipo.
func ClassByCode(code int) (InvoiceClass, bool) {
	c, ok := invoiceClasses[code]
	return c, ok
}

// =============================================================================
// Tipos de documento del receptor (DocTipo) — tabla 208 WSFEv1.
// =============================================================================

const (
	DocTipoCUIT           = 80 // CUIT (personas jurídicas y físicas)
	DocTipoCUIL           = 86 // CUIL
	DocTipoCDI            = 87 // CDI
	DocTipoCIExtranjera   = 91 // Cédula de identidad extranjera
	DocTipoPasaporte      = 94 // Pasaporte
	DocTipoDNI            = 96 // DNI
	DocTipoSinIdentificar = 99 // Consumidor final sin identificar
)

// =============================================================================
// Condición frente al IVA del receptor (CondicionIVAReceptorId) — RG 5616.
// =============================================================================

const (
	CondIVAResponsableInscripto = 1
	CondIVAExento               = 4
	CondIVAConsumidorFinal      = 5
	CondIVAMonotributista       = 6
	CondIVANoCategorizado       = 7
	CondIVAProveedorExterior    = 8
	CondIVAClienteExterior      = 9
	CondIVALiberado             = 10 // IVA Liberado – Ley 19.640
	CondIVAMonotributoSocial    = 13
	CondIVANoAlcanzado          = 15
	CondIVAMonotributoPromovido = 16 // Monotributo Trabajador Independiente Promovido
)

// vatConditionIDs tabla etiqueta legible -> id AFIP. Etiqueta desconocida o
// vacía resuelve a Consumidor Final.
var vatConditionIDs = map[string]int{
	"Responsable Inscripto":                         CondIVAResponsableInscripto,
	"Exento":                                        CondIVAExento,
	"Consumidor Final":                              CondIVAConsumidorFinal,
	"Monotributista":                                CondIVAMonotributista,
	"Sujeto No Categorizado":                        CondIVANoCategorizado,
	"Proveedor del Exterior":                        CondIVAProveedorExterior,
	"Cliente del Exterior":                          CondIVAClienteExterior,
	"IVA Liberado - Ley 19.640":                     CondIVALiberado,
	"Monotributista Social":                         CondIVAMonotributoSocial,
	"IVA No Alcanzado":                              CondIVANoAlcanzado,
	"Monotributo Trabajador Independiente Promovido": CondIVAMonotributoPromovido,
}

// =============================================================================
// Alícuotas de IVA (AlicIva.Id) — tabla de alícuotas WSFEv1.
// =============================================================================

const (
	RateID0   = 3 // 0%
	RateID25  = 9 // 2,5%
	RateID5   = 8 // 5%
	RateID105 = 4 // 10,5%
	RateID21  = 5 // 21%
	RateID27  = 6 // 27%
)

// VatRateIDs tabla tasa (porcentaje, clave con 2 decimales) -> id de alícuota.
// Tasa no mapeada resuelve al id del 21%.
var VatRateIDs = map[string]int{
	"0.00":  RateID0,
	"2.50":  RateID25,
	"5.00":  RateID5,
	"10.50": RateID105,
	"21.00": RateID21,
	"27.00": RateID27,
}

// =============================================================================
// Moneda y conceptos.
// =============================================================================

const (
	MonedaPesos                 = "PES" // pesos argentinos, cotización 1
	ConceptoProductos           = 1
	ConceptoServicios           = 2
	ConceptoProductosYServicios = 3
)
