// Package tax implementa el cálculo impositivo de líneas de comprobante:
// descomposición neto/IVA/final según la clase del comprobante y agregación
// de IVA por alícuota para la declaración ante ARCA.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/facturalo/facturalo-api/pkg/arca"
)

// LineItem es una línea de comprobante tal como la carga el usuario.
// Inmutable una vez entregada a ComputeLines.
type LineItem struct {
	ID          string
	Description string
	Code        string
	Quantity    int64
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	// TaxRate en porcentaje (21, 10.5, 0, ...). nil = 21% por defecto;
	// cero explícito significa alícuota 0%, no default.
	TaxRate *decimal.Decimal
}

// ComputedLine es la línea con los montos resueltos, todos redondeados a 2
// decimales (mitad hacia arriba en valor absoluto, como factura ARCA).
type ComputedLine struct {
	ID          string
	Description string
	Code        string
	Quantity    int64

	TaxRate decimal.Decimal
	RateID  int // id de alícuota AFIP (AlicIva.Id)

	UnitNet   decimal.Decimal
	UnitIVA   decimal.Decimal
	UnitFinal decimal.Decimal
	LineNet   decimal.Decimal
	LineIVA   decimal.Decimal
	LineFinal decimal.Decimal
}

// IVAAggregate es una entrada del array AlicIva: base imponible e importe de
// IVA acumulados por alícuota. Las alícuotas con IVA cero (exentas del
// gravamen pero declaradas) también aparecen, con Importe 0.
type IVAAggregate struct {
	RateID  int
	BaseImp decimal.Decimal
	Importe decimal.Decimal
}

// Result agrupa el resultado completo del cálculo de un comprobante.
type Result struct {
	Lines        []ComputedLine
	Net          decimal.Decimal
	IVA          decimal.Decimal
	Total        decimal.Decimal
	IVAAggregate []IVAAggregate
	// ExplicitNet indica si los precios de entrada eran netos (familia A) o
	// finales con IVA incluido (familias B y C).
	ExplicitNet bool
}

var (
	hundred        = decimal.NewFromInt(100)
	defaultTaxRate = decimal.NewFromInt(21)
)

// ComputeLines descompone cada línea en neto/IVA/final según la clase del
// comprobante y agrega el IVA por alícuota.
//
// Clases de neto explícito (letra A): el precio cargado es neto y el IVA se
// suma. Clases de neto implícito (B y C): el precio cargado es el final al
// consumidor y el neto se obtiene por cálculo inverso. En ambos casos el
// descuento se aplica primero sobre el precio unitario, con redondeo a 2
// decimales en cada paso; los totales de línea se redondean de nuevo tras
// multiplicar por la cantidad.
//
// Quantity debe ser >= 1: el caller lo garantiza antes de llegar acá.
func ComputeLines(items []LineItem, class arca.InvoiceClass) Result {
	explicit := class.ExplicitNet()

	res := Result{
		Lines:       make([]ComputedLine, 0, len(items)),
		ExplicitNet: explicit,
	}

	// Acumuladores por alícuota, en orden de primera aparición.
	aggIndex := make(map[int]int)

	for _, item := range items {
		rate := defaultTaxRate
		if item.TaxRate != nil {
			rate = *item.TaxRate
		}

		qty := decimal.NewFromInt(item.Quantity)
		discounted := item.UnitPrice.
			Mul(hundred.Sub(item.DiscountPct)).
			Div(hundred).
			Round(2)

		var unitNet, unitIVA, unitFinal decimal.Decimal
		if explicit {
			unitNet = discounted
			unitIVA = unitNet.Mul(rate).Div(hundred).Round(2)
			unitFinal = unitNet.Add(unitIVA).Round(2)
		} else {
			unitFinal = discounted
			unitNet = unitFinal.Div(decimal.NewFromInt(1).Add(rate.Div(hundred))).Round(2)
			unitIVA = unitFinal.Sub(unitNet).Round(2)
		}

		line := ComputedLine{
			ID:          item.ID,
			Description: item.Description,
			Code:        item.Code,
			Quantity:    item.Quantity,
			TaxRate:     rate,
			RateID:      arca.RateID(rate),
			UnitNet:     unitNet,
			UnitIVA:     unitIVA,
			UnitFinal:   unitFinal,
			LineNet:     unitNet.Mul(qty).Round(2),
			LineIVA:     unitIVA.Mul(qty).Round(2),
			LineFinal:   unitFinal.Mul(qty).Round(2),
		}
		res.Lines = append(res.Lines, line)

		idx, ok := aggIndex[line.RateID]
		if !ok {
			idx = len(res.IVAAggregate)
			aggIndex[line.RateID] = idx
			res.IVAAggregate = append(res.IVAAggregate, IVAAggregate{RateID: line.RateID})
		}
		res.IVAAggregate[idx].BaseImp = res.IVAAggregate[idx].BaseImp.Add(line.LineNet)
		res.IVAAggregate[idx].Importe = res.IVAAggregate[idx].Importe.Add(line.LineIVA)

		res.Net = res.Net.Add(line.LineNet)
		res.IVA = res.IVA.Add(line.LineIVA)
		res.Total = res.Total.Add(line.LineFinal)
	}

	for i := range res.IVAAggregate {
		res.IVAAggregate[i].BaseImp = res.IVAAggregate[i].BaseImp.Round(2)
		res.IVAAggregate[i].Importe = res.IVAAggregate[i].Importe.Round(2)
	}
	res.Net = res.Net.Round(2)
	res.IVA = res.IVA.Round(2)
	res.Total = res.Total.Round(2)

	return res
}
