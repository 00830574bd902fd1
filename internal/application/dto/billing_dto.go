package dto

import "github.com/shopspring/decimal"

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name         string `json:"name"`
	TaxID        string `json:"tax_id,omitempty"`
	IVACondition string `json:"iva_condition,omitempty"`
	Address      string `json:"address,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TaxID        string `json:"tax_id,omitempty"`
	IVACondition string `json:"iva_condition,omitempty"`
	Address      string `json:"address,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// InvoiceItemRequest línea de comprobante tal como la carga el usuario.
// TaxRate nulo usa 21%; cero explícito es alícuota 0%.
type InvoiceItemRequest struct {
	Description string           `json:"description"`
	Code        string           `json:"code,omitempty"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	DiscountPct decimal.Decimal  `json:"discount_pct,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// CbteTipo en 0 deja que el clasificador lo resuelva según las condiciones
// de IVA de emisor y receptor.
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customer_id"`
	CbteTipo   int                  `json:"cbte_tipo,omitempty"`
	PtoVta     int                  `json:"pto_vta,omitempty"`    // 0 = punto de venta activo de la sesión
	IssueDate  string               `json:"issue_date,omitempty"` // ISO; vacío = hoy
	Items      []InvoiceItemRequest `json:"items"`

	// Para notas de crédito/débito: número del comprobante original y,
	// opcionalmente, su tipo (si va en 0 se deriva del tipo de la nota).
	AssociatedNumber   int64 `json:"associated_number,omitempty"`
	AssociatedCbteTipo int   `json:"associated_cbte_tipo,omitempty"`
}

// InvoiceLineResponse línea calculada en respuestas.
type InvoiceLineResponse struct {
	Description string          `json:"description"`
	Code        string          `json:"code,omitempty"`
	Quantity    int64           `json:"quantity"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	UnitNet     decimal.Decimal `json:"unit_net"`
	UnitIVA     decimal.Decimal `json:"unit_iva"`
	UnitFinal   decimal.Decimal `json:"unit_final"`
	LineNet     decimal.Decimal `json:"line_net"`
	LineIVA     decimal.Decimal `json:"line_iva"`
	LineFinal   decimal.Decimal `json:"line_final"`
}

// AuthorizeInvoiceResponse resultado de POST /api/invoices: el comprobante
// autorizado. Warnings lista fallas no fatales posteriores a la autorización
// (historial o PDF): el CAE ya es legalmente válido aunque aparezcan.
type AuthorizeInvoiceResponse struct {
	InvoiceID  string `json:"invoice_id,omitempty"`
	CbteTipo   int    `json:"cbte_tipo"`
	PtoVta     int    `json:"pto_vta"`
	CbteNumero int64  `json:"cbte_numero"`
	NumberStr  string `json:"number_str"`
	CAE        string `json:"cae"`
	CAEVto     string `json:"cae_vto"`
	IssueDate  string `json:"issue_date"`
	QRURL      string `json:"qr_url"`

	ImpNeto  decimal.Decimal `json:"imp_neto"`
	ImpIVA   decimal.Decimal `json:"imp_iva"`
	ImpTotal decimal.Decimal `json:"imp_total"`

	Lines    []InvoiceLineResponse `json:"lines"`
	Warnings []string              `json:"warnings,omitempty"`
}

// PreviewInvoiceResponse resultado de POST /api/invoices/preview: cálculo
// impositivo y QR provisorio (sin codAut) sin tocar ARCA.
type PreviewInvoiceResponse struct {
	CbteTipo int             `json:"cbte_tipo"`
	Letter   string          `json:"letter"`
	ImpNeto  decimal.Decimal `json:"imp_neto"`
	ImpIVA   decimal.Decimal `json:"imp_iva"`
	ImpTotal decimal.Decimal `json:"imp_total"`

	Lines []InvoiceLineResponse `json:"lines"`
	QRURL string                `json:"qr_url"`
}

// InvoiceSummaryResponse entrada del listado GET /api/invoices.
type InvoiceSummaryResponse struct {
	ID           string          `json:"id"`
	CbteTipo     int             `json:"cbte_tipo"`
	NumberStr    string          `json:"number_str"`
	IssueDate    string          `json:"issue_date"`
	CAE          string          `json:"cae"`
	ImpTotal     decimal.Decimal `json:"imp_total"`
	CustomerName string          `json:"customer_name,omitempty"`
}

// InvoiceDetailResponse comprobante completo para GET /api/invoices/:id.
type InvoiceDetailResponse struct {
	InvoiceSummaryResponse
	CAEVto          string                `json:"cae_vto"`
	QRURL           string                `json:"qr_url"`
	ImpNeto         decimal.Decimal       `json:"imp_neto"`
	ImpIVA          decimal.Decimal       `json:"imp_iva"`
	CustomerTaxID   string                `json:"customer_tax_id,omitempty"`
	CustomerAddress string                `json:"customer_address,omitempty"`
	CustomerIVACond string                `json:"customer_iva_cond,omitempty"`
	Lines           []InvoiceLineResponse `json:"lines"`
}
