// Package pdf implementa la representación gráfica del comprobante
// electrónico ARCA (RG 1415 y RG 4892 para el QR).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + letra │ FACTURA N° + Fecha + CUIT   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Domicilio / IIBB / Inicio de actividades           │
//	│  RECEPTOR: Nombre + CUIT/DNI + Cond. IVA + Cond. venta      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IVA% | Importe        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Neto / IVA / TOTAL                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR ARCA + CAE + Vencimiento CAE                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/facturalo/facturalo-api/internal/application/billing"
	"github.com/facturalo/facturalo-api/internal/domain/tax"
)

var (
	colorPrimary = &props.Color{Red: 20, Green: 40, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Render genera el PDF del comprobante y devuelve sus bytes.
func (g *MarotoPDFGenerator) Render(payload billing.DocumentPayload) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(payload.Header.Title+" "+payload.Header.NumberStr, true).
		WithAuthor(payload.Seller.RazonSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(payload))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(payload.Seller, payload.Header))
	m.AddRows(receptorRow(payload.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(payload.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(payload))

	m.AddRows(row.New(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range caeFooterRows(payload.Header) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + letra fiscal (izq) y título + número + fecha (der).
func headerRow(payload billing.DocumentPayload) core.Row {
	seller := payload.Seller
	h := payload.Header

	name := seller.NombreFantasia
	if name == "" {
		name = seller.RazonSocial
	}

	return row.New(20).Add(
		col.New(6).Add(
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(seller.RazonSocial, props.Text{Size: 8, Top: 9, Color: colorGray}),
			text.New("CUIT: "+h.CUIT, props.Text{Size: 9, Top: 14, Color: colorGray}),
		),
		col.New(1).Add(
			text.New(h.Letter, props.Text{
				Style: fontstyle.Bold, Size: 22, Align: align.Center,
				Color: colorPrimary, Top: 2,
			}),
			text.New(fmt.Sprintf("COD. %02d", h.CbteTipo), props.Text{
				Size: 6, Align: align.Center, Top: 13, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(h.Title, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+h.NumberStr, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+h.Date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: domicilio comercial, condición IVA, IIBB e inicio de actividades.
func emisorRow(seller billing.SellerInfo, h billing.HeaderInfo) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR — "+seller.CondicionIVA, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Domicilio: %s   |   IIBB: %s   |   Inicio de actividades: %s",
				nonEmpty(seller.Domicilio, "—"),
				nonEmpty(h.IIBB, "—"),
				nonEmpty(h.InicioActividad, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// receptorRow: datos del receptor.
func receptorRow(customer billing.CustomerInfo) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(customer.Name, "Consumidor Final"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CUIT/DNI: %s   |   Cond. IVA: %s   |   Domicilio: %s   |   Cond. venta: %s",
				nonEmpty(customer.TaxID, "—"),
				nonEmpty(customer.CondicionIVA, "Consumidor Final"),
				nonEmpty(customer.Domicilio, "—"),
				nonEmpty(customer.CondVenta, "Contado"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unitario", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Importe", 3, align.Right),
	)
}

// tableItemRows: una fila por línea calculada. El precio unitario y el importe
// que se imprimen son los finales (con IVA incluido en B/C).
func tableItemRows(items []tax.ComputedLine) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		desc := it.Description
		if it.Code != "" {
			desc = "[" + it.Code + "] " + desc
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				desc,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$ "+it.UnitFinal.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				it.TaxRate.String()+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				"$ "+it.LineFinal.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales. Los comprobantes letra C no discriminan IVA,
// así que solo se imprime el total.
func totalsRow(payload billing.DocumentPayload) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := text.New("TOTAL:", props.Text{
		Style: fontstyle.Bold, Size: 11, Align: align.Right,
		Color: colorPrimary, Right: 2, Top: 12,
	})

	netD, ivaD, totalD := decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range payload.Items {
		netD = netD.Add(it.LineNet)
		ivaD = ivaD.Add(it.LineIVA)
		totalD = totalD.Add(it.LineFinal)
	}
	net := netD.StringFixed(2)
	iva := ivaD.StringFixed(2)
	total := totalD.StringFixed(2)

	if payload.Header.Letter == "C" {
		return row.New(18).Add(
			col.New(6),
			col.New(3).Add(grandLabel),
			col.New(3).Add(text.New("$ "+total, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Right: 1, Top: 12,
			})),
		)
	}

	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Neto gravado:"),
			text.New("IVA:", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5,
			}),
			grandLabel,
		),
		col.New(3).Add(
			value("$ "+net),
			text.New("$ "+iva, props.Text{Size: 9, Align: align.Right, Right: 1, Top: 5}),
			text.New("$ "+total, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Right: 1, Top: 12,
			}),
		),
	)
}

// caeFooterRows: QR ARCA + CAE + vencimiento.
func caeFooterRows(h billing.HeaderInfo) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("COMPROBANTE AUTORIZADO POR ARCA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if h.QRURL != "" {
		rows = append(rows, row.New(40).Add(
			col.New(3).Add(code.NewQr(h.QRURL, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(9).Add(
				text.New("CAE: "+h.CAE, props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3,
				}),
				text.New("Vencimiento CAE: "+h.CAEVto, props.Text{
					Size: 9, Top: 13, Left: 3, Color: colorGray,
				}),
				text.New("Escaneá el código QR para validar este comprobante\nen el sitio de ARCA.", props.Text{
					Size: 8, Top: 22, Left: 3, Color: colorGray,
				}),
			),
		))
	} else {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("DOCUMENTO NO VÁLIDO COMO FACTURA — PRESUPUESTO", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: colorGray, Top: 2,
			}),
		)))
	}

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
