package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturalo/facturalo-api/internal/domain/tax"
	"github.com/facturalo/facturalo-api/pkg/arca"
)

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func mustClass(t *testing.T, code int) arca.InvoiceClass {
	t.Helper()
	c, ok := arca.ClassByCode(code)
	require.True(t, ok)
	return c
}

// ============================================
// Escenarios de referencia
// ============================================

// Factura A, un ítem neto 1000.00 al 21%: el IVA se suma sobre el neto.
func TestComputeLines_FacturaA_NetoExplicito(t *testing.T) {
	res := tax.ComputeLines([]tax.LineItem{
		{ID: "1", Description: "Servicio mensual", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}, mustClass(t, arca.CbteFacturaA))

	require.Len(t, res.Lines, 1)
	l := res.Lines[0]
	assert.True(t, res.ExplicitNet)
	assert.Equal(t, "1000.00", l.UnitNet.StringFixed(2))
	assert.Equal(t, "210.00", l.UnitIVA.StringFixed(2))
	assert.Equal(t, "1210.00", l.UnitFinal.StringFixed(2))
	assert.Equal(t, "1000.00", res.Net.StringFixed(2))
	assert.Equal(t, "210.00", res.IVA.StringFixed(2))
	assert.Equal(t, "1210.00", res.Total.StringFixed(2))

	require.Len(t, res.IVAAggregate, 1)
	assert.Equal(t, arca.RateID21, res.IVAAggregate[0].RateID)
	assert.Equal(t, "1000.00", res.IVAAggregate[0].BaseImp.StringFixed(2))
	assert.Equal(t, "210.00", res.IVAAggregate[0].Importe.StringFixed(2))
}

// Factura B con el mismo ítem económico cargado como precio final 1210.00:
// el neto se obtiene por cálculo inverso y debe coincidir con el escenario A
// dentro de la tolerancia de redondeo.
func TestComputeLines_FacturaB_NetoImplicito(t *testing.T) {
	res := tax.ComputeLines([]tax.LineItem{
		{ID: "1", Description: "Servicio mensual", Quantity: 1, UnitPrice: decimal.NewFromInt(1210)},
	}, mustClass(t, arca.CbteFacturaB))

	require.Len(t, res.Lines, 1)
	l := res.Lines[0]
	assert.False(t, res.ExplicitNet)

	tol := decimal.RequireFromString("0.01")
	assert.True(t, l.UnitNet.Sub(decimal.NewFromInt(1000)).Abs().LessThanOrEqual(tol),
		"unitNet=%s", l.UnitNet)
	assert.True(t, l.UnitIVA.Sub(decimal.NewFromInt(210)).Abs().LessThanOrEqual(tol),
		"unitIVA=%s", l.UnitIVA)
	assert.Equal(t, "1210.00", l.UnitFinal.StringFixed(2))
	assert.Equal(t, "1210.00", res.Total.StringFixed(2))
}

// Ida y vuelta: facturar en neto explícito y recargar el final resultante en
// modo implícito debe reproducir el neto original dentro de ±0.01.
func TestComputeLines_IdaYVuelta(t *testing.T) {
	tol := decimal.RequireFromString("0.01")
	nets := []string{"1000", "99.99", "0.01", "123456.78", "33.33"}
	rates := []string{"0", "2.5", "5", "10.5", "21", "27"}

	for _, n := range nets {
		for _, r := range rates {
			explicit := tax.ComputeLines([]tax.LineItem{
				{ID: "1", Quantity: 1, UnitPrice: decimal.RequireFromString(n), TaxRate: rate(r)},
			}, mustClass(t, arca.CbteFacturaA))

			implicit := tax.ComputeLines([]tax.LineItem{
				{ID: "1", Quantity: 1, UnitPrice: explicit.Lines[0].UnitFinal, TaxRate: rate(r)},
			}, mustClass(t, arca.CbteFacturaB))

			diff := implicit.Lines[0].UnitNet.Sub(decimal.RequireFromString(n)).Abs()
			assert.True(t, diff.LessThanOrEqual(tol),
				"neto %s tasa %s: ida %s vuelta %s", n, r, explicit.Lines[0].UnitFinal, implicit.Lines[0].UnitNet)
		}
	}
}

// ============================================
// Invariantes de suma
// ============================================

func TestComputeLines_InvariantesDeSuma(t *testing.T) {
	items := []tax.LineItem{
		{ID: "1", Quantity: 3, UnitPrice: decimal.RequireFromString("150.75"), TaxRate: rate("21")},
		{ID: "2", Quantity: 1, UnitPrice: decimal.RequireFromString("99.99"), TaxRate: rate("10.5"), DiscountPct: decimal.NewFromInt(10)},
		{ID: "3", Quantity: 7, UnitPrice: decimal.RequireFromString("12.37"), TaxRate: rate("21")},
		{ID: "4", Quantity: 2, UnitPrice: decimal.RequireFromString("500"), TaxRate: rate("0")},
	}

	for _, code := range []int{arca.CbteFacturaA, arca.CbteFacturaB, arca.CbteFacturaC} {
		res := tax.ComputeLines(items, mustClass(t, code))

		var sumFinal, sumNet, sumIVA decimal.Decimal
		for _, l := range res.Lines {
			sumFinal = sumFinal.Add(l.LineFinal)
			sumNet = sumNet.Add(l.LineNet)
			sumIVA = sumIVA.Add(l.LineIVA)
		}

		assert.True(t, sumFinal.Equal(res.Net.Add(res.IVA).Round(2)),
			"cbte %d: sum(final)=%s net+iva=%s", code, sumFinal, res.Net.Add(res.IVA))
		assert.True(t, res.Net.Equal(sumNet.Round(2)))
		assert.True(t, res.IVA.Equal(sumIVA.Round(2)))

		var aggBase, aggIVA decimal.Decimal
		for _, a := range res.IVAAggregate {
			aggBase = aggBase.Add(a.BaseImp)
			aggIVA = aggIVA.Add(a.Importe)
		}
		assert.True(t, aggBase.Equal(res.Net), "cbte %d: aggBase=%s net=%s", code, aggBase, res.Net)
		assert.True(t, aggIVA.Equal(res.IVA), "cbte %d: aggIVA=%s iva=%s", code, aggIVA, res.IVA)
	}
}

// ============================================
// Agregación por alícuota
// ============================================

// Las líneas con alícuota 0 igual aparecen en el agregado (id 3) con importe 0.
func TestComputeLines_AlicuotaCeroEnAgregado(t *testing.T) {
	res := tax.ComputeLines([]tax.LineItem{
		{ID: "1", Quantity: 1, UnitPrice: decimal.NewFromInt(100), TaxRate: rate("21")},
		{ID: "2", Quantity: 1, UnitPrice: decimal.NewFromInt(50), TaxRate: rate("0")},
	}, mustClass(t, arca.CbteFacturaA))

	require.Len(t, res.IVAAggregate, 2)
	// Orden de primera aparición.
	assert.Equal(t, arca.RateID21, res.IVAAggregate[0].RateID)
	assert.Equal(t, arca.RateID0, res.IVAAggregate[1].RateID)
	assert.Equal(t, "50.00", res.IVAAggregate[1].BaseImp.StringFixed(2))
	assert.True(t, res.IVAAggregate[1].Importe.IsZero())
}

// Dos líneas con la misma alícuota se acumulan en una sola entrada.
func TestComputeLines_AgrupaPorAlicuota(t *testing.T) {
	res := tax.ComputeLines([]tax.LineItem{
		{ID: "1", Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
		{ID: "2", Quantity: 2, UnitPrice: decimal.NewFromInt(200)},
	}, mustClass(t, arca.CbteFacturaA))

	require.Len(t, res.IVAAggregate, 1)
	assert.Equal(t, "500.00", res.IVAAggregate[0].BaseImp.StringFixed(2))
	assert.Equal(t, "105.00", res.IVAAggregate[0].Importe.StringFixed(2))
}

// ============================================
// Defaults y descuentos
// ============================================

// TaxRate nil usa 21%; cero explícito significa 0%, no default.
func TestComputeLines_TasaPorDefecto(t *testing.T) {
	res := tax.ComputeLines([]tax.LineItem{
		{ID: "1", Quantity: 1, UnitPrice: decimal.NewFromInt(100)},             // nil -> 21
		{ID: "2", Quantity: 1, UnitPrice: decimal.NewFromInt(100), TaxRate: rate("0")}, // cero explícito
	}, mustClass(t, arca.CbteFacturaA))

	assert.Equal(t, "21", res.Lines[0].TaxRate.String())
	assert.Equal(t, "21.00", res.Lines[0].LineIVA.StringFixed(2))
	assert.True(t, res.Lines[1].TaxRate.IsZero())
	assert.True(t, res.Lines[1].LineIVA.IsZero())
}

func TestComputeLines_DescuentoAntesDelIVA(t *testing.T) {
	res := tax.ComputeLines([]tax.LineItem{
		{ID: "1", Quantity: 2, UnitPrice: decimal.NewFromInt(1000), DiscountPct: decimal.NewFromInt(15)},
	}, mustClass(t, arca.CbteFacturaA))

	l := res.Lines[0]
	assert.Equal(t, "850.00", l.UnitNet.StringFixed(2))
	assert.Equal(t, "178.50", l.UnitIVA.StringFixed(2))
	assert.Equal(t, "1700.00", l.LineNet.StringFixed(2))
	assert.Equal(t, "2057.00", l.LineFinal.StringFixed(2))
}
