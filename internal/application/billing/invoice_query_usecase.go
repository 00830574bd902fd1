package billing

import (
	"context"

	"github.com/facturalo/facturalo-api/internal/application/dto"
	"github.com/facturalo/facturalo-api/internal/domain"
	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
	"github.com/facturalo/facturalo-api/internal/domain/tax"
	"github.com/facturalo/facturalo-api/pkg/arca"
)

// InvoiceQueryUseCase consultas del historial de comprobantes y
// re-generación del PDF de un comprobante ya autorizado.
type InvoiceQueryUseCase struct {
	invoiceRepo repository.InvoiceRepository
	pdfGen      InvoicePDFGenerator
}

// NewInvoiceQueryUseCase construye el caso de uso de consultas.
func NewInvoiceQueryUseCase(invoiceRepo repository.InvoiceRepository, pdfGen InvoicePDFGenerator) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{invoiceRepo: invoiceRepo, pdfGen: pdfGen}
}

// List devuelve el historial de la cuenta emisora, más recientes primero.
func (uc *InvoiceQueryUseCase) List(ctx context.Context, emitterCUIT string, filter repository.InvoiceFilter) ([]dto.InvoiceSummaryResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	invoices, err := uc.invoiceRepo.ListByEmitter(ctx, emitterCUIT, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceSummaryResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toSummary(inv))
	}
	return out, nil
}

// Get devuelve un comprobante con sus líneas.
func (uc *InvoiceQueryUseCase) Get(ctx context.Context, emitterCUIT, id string) (*dto.InvoiceDetailResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, emitterCUIT, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}

	detail := &dto.InvoiceDetailResponse{
		InvoiceSummaryResponse: toSummary(inv),
		CAEVto:                 inv.CAEVto,
		QRURL:                  inv.QRURL,
		ImpNeto:                inv.ImpNeto,
		ImpIVA:                 inv.ImpIVA,
		CustomerTaxID:          inv.CustomerTaxID,
		CustomerAddress:        inv.CustomerAddress,
		CustomerIVACond:        inv.CustomerIVACond,
		Lines:                  toLineResponses(toComputedLines(items)),
	}
	return detail, nil
}

// RenderPDF vuelve a generar el PDF de un comprobante autorizado a partir
// del historial: mismos datos, mismo QR, sin tocar ARCA.
func (uc *InvoiceQueryUseCase) RenderPDF(ctx context.Context, emitterCUIT, id string, account Account) ([]byte, string, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, emitterCUIT, id)
	if err != nil {
		return nil, "", err
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItems(ctx, inv.ID)
	if err != nil {
		return nil, "", err
	}

	class, ok := arca.ClassByCode(inv.CbteTipo)
	if !ok {
		return nil, "", domain.ErrInvalidInput
	}

	pdf, err := uc.pdfGen.Render(DocumentPayload{
		Seller: SellerInfo{
			RazonSocial:    account.RazonSocial,
			NombreFantasia: account.NombreFantasia,
			Domicilio:      account.Domicilio,
			Telefono:       account.Telefono,
			CondicionIVA:   account.CondicionIVA,
		},
		Header: HeaderInfo{
			CbteTipo:        inv.CbteTipo,
			Letter:          class.Letter,
			Title:           class.Title,
			NumberStr:       inv.NumberStr,
			Date:            arca.DisplayDate(inv.IssueDate),
			CAE:             inv.CAE,
			CAEVto:          inv.CAEVto,
			CUIT:            FormatCUIT(inv.EmitterCUIT),
			IIBB:            account.IIBB,
			InicioActividad: account.InicioActividad,
			QRURL:           inv.QRURL,
		},
		Customer: CustomerInfo{
			Name:         inv.CustomerName,
			TaxID:        inv.CustomerTaxID,
			Domicilio:    inv.CustomerAddress,
			CondicionIVA: inv.CustomerIVACond,
			CondVenta:    "Contado",
		},
		Items: toComputedLines(items),
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, "Factura-" + inv.NumberStr + ".pdf", nil
}

func toSummary(inv *entity.Invoice) dto.InvoiceSummaryResponse {
	return dto.InvoiceSummaryResponse{
		ID:           inv.ID,
		CbteTipo:     inv.CbteTipo,
		NumberStr:    inv.NumberStr,
		IssueDate:    inv.IssueDate,
		CAE:          inv.CAE,
		ImpTotal:     inv.ImpTotal,
		CustomerName: inv.CustomerName,
	}
}

func toComputedLines(items []entity.InvoiceItem) []tax.ComputedLine {
	out := make([]tax.ComputedLine, len(items))
	for i, it := range items {
		out[i] = tax.ComputedLine{
			ID:          it.ID,
			Description: it.Description,
			Code:        it.Code,
			Quantity:    it.Quantity,
			TaxRate:     it.TaxRate,
			RateID:      it.RateID,
			UnitNet:     it.UnitNet,
			UnitIVA:     it.UnitIVA,
			UnitFinal:   it.UnitFinal,
			LineNet:     it.LineNet,
			LineIVA:     it.LineIVA,
			LineFinal:   it.LineFinal,
		}
	}
	return out
}
