package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice es el registro histórico de un comprobante electrónico autorizado
// (o emitido a mejor esfuerzo). Se crea una vez por intento de facturación y
// nunca se muta: el historial es append-only.
type Invoice struct {
	ID          string
	EmitterCUIT string
	CustomerID  string

	CbteTipo   int
	PtoVta     int
	CbteNumero int64
	NumberStr  string // "{ptoVta:04d}-{nro:08d}", ej. "0004-00000012"

	CAE       string
	CAEVto    string // DD/MM/AAAA, normalizada desde la respuesta AFIP
	IssueDate string // ISO AAAA-MM-DD
	QRURL     string

	ImpNeto    decimal.Decimal
	ImpIVA     decimal.Decimal
	ImpTotal   decimal.Decimal
	ImpTotConc decimal.Decimal
	ImpOpEx    decimal.Decimal
	ImpTrib    decimal.Decimal

	// Snapshot del receptor al momento de facturar (el cliente puede cambiar después).
	CustomerName    string
	CustomerTaxID   string
	CustomerAddress string
	CustomerEmail   string
	CustomerIVACond string

	CreatedAt time.Time
}

// InvoiceItem es una línea calculada del comprobante, tal como se declaró a
// AFIP y se imprimió. Montos unitarios y de línea ya redondeados a 2 decimales.
type InvoiceItem struct {
	ID        string
	InvoiceID string

	Description string
	Code        string
	Quantity    int64

	UnitPriceInput decimal.Decimal // precio cargado por el usuario (neto o final según la clase)
	DiscountPct    decimal.Decimal
	TaxRate        decimal.Decimal
	RateID         int             // id de alícuota AFIP (AlicIva.Id)

	UnitNet   decimal.Decimal
	UnitIVA   decimal.Decimal
	UnitFinal decimal.Decimal
	LineNet   decimal.Decimal
	LineIVA   decimal.Decimal
	LineFinal decimal.Decimal
}
