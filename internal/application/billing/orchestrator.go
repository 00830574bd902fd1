package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturalo/facturalo-api/internal/application/dto"
	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
	"github.com/facturalo/facturalo-api/internal/domain/tax"
	"github.com/facturalo/facturalo-api/internal/infrastructure/wsfe"
	"github.com/facturalo/facturalo-api/pkg/arca"
	"github.com/facturalo/facturalo-api/pkg/logger"
)

// ValidationError indica datos faltantes antes de cualquier llamada remota.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validación: " + e.Reason }

// AuthorizeOutcome es el resultado de un intento exitoso: la respuesta para
// el caller y el PDF renderizado (nil si el render falló; en ese caso la
// respuesta lleva el warning correspondiente).
type AuthorizeOutcome struct {
	Response *dto.AuthorizeInvoiceResponse
	PDF      []byte
}

// Orchestrator secuencia el flujo completo de facturación electrónica:
//
//	Validar → Último autorizado → Armar solicitud → Solicitar CAE →
//	Parsear → Persistir → QR → PDF
//
// Recibe la sesión como foto explícita (credenciales, punto de venta activo,
// datos del emisor): no lee estado ambiente, lo que lo hace testeable de
// punta a punta con puertos falsos.
//
// Semántica de fallas: solo la validación inicial y el rechazo del organismo
// abortan. La consulta del último número cae a 0 (ARCA asigna server-side) y
// las fallas de historial o render se degradan a warnings: perder un
// comprobante legalmente autorizado es peor que un PDF faltante.
type Orchestrator struct {
	authz        AuthorizationService
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	pdfGen       InvoicePDFGenerator
	attempts     AttemptLogger
	log          *logger.Logger
}

// NewOrchestrator construye el orquestador con todos sus puertos.
func NewOrchestrator(
	authz AuthorizationService,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	pdfGen InvoicePDFGenerator,
	attempts AttemptLogger,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		authz:        authz,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		pdfGen:       pdfGen,
		attempts:     attempts,
		log:          log,
	}
}

// Authorize ejecuta un intento completo de facturación. Cada llamada remota
// se intenta exactamente una vez; no hay reintentos ni exclusión mutua entre
// intentos concurrentes del mismo punto de venta (ARCA rechaza el segundo).
func (o *Orchestrator) Authorize(ctx context.Context, session Session, in dto.CreateInvoiceRequest) (*AuthorizeOutcome, error) {
	// ═══════════════════════════════════════════════════════════════════════
	// 1. Validación (sin llamadas remotas)
	// ═══════════════════════════════════════════════════════════════════════
	creds := session.Credentials
	if creds.Token == "" || creds.Sign == "" || creds.CUIT == "" {
		return nil, &ValidationError{Reason: "credenciales WSAA o CUIT emisor no disponibles"}
	}
	if session.ActivePoint == nil {
		return nil, &ValidationError{Reason: "no hay un punto de venta activo seleccionado"}
	}
	if in.CustomerID == "" {
		return nil, &ValidationError{Reason: "falta el receptor del comprobante"}
	}
	if len(in.Items) == 0 {
		return nil, &ValidationError{Reason: "el comprobante no tiene ítems"}
	}

	customer, err := o.customerRepo.GetByID(ctx, creds.CUIT, in.CustomerID)
	if err != nil || customer == nil {
		return nil, &ValidationError{Reason: "receptor inexistente: " + in.CustomerID}
	}

	ptoVta := session.ActivePoint.Number
	if in.PtoVta > 0 {
		ptoVta = in.PtoVta
	}

	cbteTipo := in.CbteTipo
	if cbteTipo == 0 {
		cbteTipo = arca.ResolveInvoiceClass(session.Account.CondicionIVA, customer.IVACondition)
	}
	class, ok := arca.ClassByCode(cbteTipo)
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("tipo de comprobante desconocido: %d", cbteTipo)}
	}

	// ═══════════════════════════════════════════════════════════════════════
	// 2. Cálculo impositivo y clasificación del receptor
	// ═══════════════════════════════════════════════════════════════════════
	computed := tax.ComputeLines(toTaxItems(in.Items), class)
	docType := arca.ResolveReceiverDocType(customer.TaxID)
	condIVAID := arca.VatConditionID(customer.IVACondition)
	compact, iso := arca.NormalizeIssueDate(in.IssueDate)

	// ═══════════════════════════════════════════════════════════════════════
	// 3. Último comprobante autorizado (no fatal: fallback a 0)
	// ═══════════════════════════════════════════════════════════════════════
	auth := wsfe.Auth{Token: creds.Token, Sign: creds.Sign, CUIT: creds.CUIT}

	var next int64
	last, err := o.authz.UltimoAutorizado(ctx, auth, ptoVta, cbteTipo)
	if err != nil {
		// ARCA numera server-side: pedir con 0 delega la asignación.
		o.log.Warn().Err(err).Int("pto_vta", ptoVta).Int("cbte_tipo", cbteTipo).
			Msg("último autorizado no disponible, se solicita con número 0")
	} else {
		next = last + 1
	}

	// ═══════════════════════════════════════════════════════════════════════
	// 4. Armar la solicitud FECAESolicitar
	// ═══════════════════════════════════════════════════════════════════════
	req, err := o.buildRequest(buildArgs{
		class:     class,
		ptoVta:    ptoVta,
		next:      next,
		compact:   compact,
		docType:   docType,
		condIVAID: condIVAID,
		computed:  computed,
		in:        in,
	})
	if err != nil {
		return nil, err
	}
	// La solicitud cruda acompaña cada registro del historial de intentos.
	reqRaw, _ := json.Marshal(req)

	// ═══════════════════════════════════════════════════════════════════════
	// 5. Solicitar CAE y parsear
	// ═══════════════════════════════════════════════════════════════════════
	raw, err := o.authz.SolicitarCAE(ctx, auth, *req)
	if err != nil {
		o.attempts.LogAttempt(ctx, AttemptRecord{
			Source: "wsfe-network", Message: err.Error(),
			CUIT: creds.CUIT, CbteTipo: cbteTipo, PtoVta: ptoVta, Request: reqRaw,
		})
		return nil, err
	}

	res, err := wsfe.ParseCAEResponse(raw)
	if err != nil {
		o.attempts.LogAttempt(ctx, AttemptRecord{
			Source: "wsfe-schema", Message: err.Error(),
			CUIT: creds.CUIT, CbteTipo: cbteTipo, PtoVta: ptoVta,
			Request: reqRaw, Response: raw,
		})
		return nil, err
	}

	if len(res.Errors) > 0 {
		// Cada error se loguea por separado; se propaga el primero.
		for _, e := range res.Errors {
			o.attempts.LogAttempt(ctx, AttemptRecord{
				Source: "wsfe-error", Message: e.Msg, ErrorCode: strconv.Itoa(e.Code),
				CUIT: creds.CUIT, CbteTipo: cbteTipo, PtoVta: ptoVta,
				Request: reqRaw, Response: raw,
			})
		}
		first := res.Errors[0]
		return nil, &wsfe.AuthorizationError{Code: first.Code, Message: first.Msg}
	}

	if res.CAE == "" || res.CAEVto == "" {
		// Rechazo implícito: sin CAE y sin lista de errores.
		obs := ""
		if len(res.Observations) > 0 {
			obs = res.Observations[0].Msg
		}
		o.attempts.LogAttempt(ctx, AttemptRecord{
			Source: "wsfe-implicit-rejection", Message: obs,
			ErrorCode: strconv.Itoa(wsfe.ImplicitRejectionCode),
			CUIT:      creds.CUIT, CbteTipo: cbteTipo, PtoVta: ptoVta,
			Request:   reqRaw, Response: raw,
		})
		return nil, &wsfe.ImplicitRejectionError{Observation: obs}
	}

	// El intento exitoso también queda en el historial, con solicitud y
	// respuesta crudas.
	o.attempts.LogAttempt(ctx, AttemptRecord{
		Source: "wsfe-cae", Message: "CAE " + res.CAE,
		CUIT: creds.CUIT, CbteTipo: cbteTipo, PtoVta: ptoVta,
		Request: reqRaw, Response: raw,
	})

	nroCmp := res.CbteHasta
	if nroCmp == 0 {
		nroCmp = next
	}
	numberStr := fmt.Sprintf("%04d-%08d", ptoVta, nroCmp)

	// ═══════════════════════════════════════════════════════════════════════
	// 6. QR y persistencia del historial (falla degradada a warning)
	// ═══════════════════════════════════════════════════════════════════════
	emitterCUIT, _ := strconv.ParseInt(onlyDigits(creds.CUIT), 10, 64)
	qrURL := arca.BuildQRURL(arca.QRInput{
		Fecha:      iso,
		CUIT:       emitterCUIT,
		PtoVta:     ptoVta,
		TipoCmp:    cbteTipo,
		NroCmp:     nroCmp,
		Importe:    computed.Total,
		TipoDocRec: docType.DocTipo,
		NroDocRec:  docType.DocNro,
		CodAut:     res.CAE,
	})

	var warnings []string

	invoice := o.buildRecord(creds.CUIT, customer, class, ptoVta, nroCmp, numberStr, res, iso, qrURL, computed)
	if err := o.invoiceRepo.Create(ctx, invoice, toEntityItems(invoice.ID, in.Items, computed.Lines)); err != nil {
		o.log.Error().Err(err).Str("number", numberStr).Msg("no se pudo guardar el comprobante en el historial")
		warnings = append(warnings, "el comprobante se autorizó pero no pudo guardarse en el historial")
	}

	// ═══════════════════════════════════════════════════════════════════════
	// 7. Render del PDF (falla degradada a warning: el CAE ya es válido)
	// ═══════════════════════════════════════════════════════════════════════
	var pdf []byte
	payload := o.buildDocumentPayload(session, customer, class, numberStr, iso, res, qrURL, computed)
	pdf, err = o.pdfGen.Render(payload)
	if err != nil {
		o.log.Error().Err(err).Str("number", numberStr).Msg("no se pudo renderizar el PDF")
		warnings = append(warnings, "el comprobante se autorizó pero el PDF no pudo generarse")
		pdf = nil
	}

	return &AuthorizeOutcome{
		Response: &dto.AuthorizeInvoiceResponse{
			InvoiceID:  invoice.ID,
			CbteTipo:   cbteTipo,
			PtoVta:     ptoVta,
			CbteNumero: nroCmp,
			NumberStr:  numberStr,
			CAE:        res.CAE,
			CAEVto:     res.CAEVto,
			IssueDate:  iso,
			QRURL:      qrURL,
			ImpNeto:    computed.Net,
			ImpIVA:     computed.IVA,
			ImpTotal:   computed.Total,
			Lines:      toLineResponses(computed.Lines),
			Warnings:   warnings,
		},
		PDF: pdf,
	}, nil
}

// Preview calcula los montos y el QR provisorio (sin codAut) sin tocar ARCA
// ni persistir nada. Sirve para presupuestos y para previsualizar en la UI.
func (o *Orchestrator) Preview(ctx context.Context, session Session, in dto.CreateInvoiceRequest) (*dto.PreviewInvoiceResponse, error) {
	if len(in.Items) == 0 {
		return nil, &ValidationError{Reason: "el comprobante no tiene ítems"}
	}

	var receiverCond, receiverTaxID string
	if in.CustomerID != "" && o.customerRepo != nil {
		if c, err := o.customerRepo.GetByID(ctx, session.Credentials.CUIT, in.CustomerID); err == nil && c != nil {
			receiverCond = c.IVACondition
			receiverTaxID = c.TaxID
		}
	}

	cbteTipo := in.CbteTipo
	if cbteTipo == 0 {
		cbteTipo = arca.ResolveInvoiceClass(session.Account.CondicionIVA, receiverCond)
	}
	class, ok := arca.ClassByCode(cbteTipo)
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("tipo de comprobante desconocido: %d", cbteTipo)}
	}

	computed := tax.ComputeLines(toTaxItems(in.Items), class)
	docType := arca.ResolveReceiverDocType(receiverTaxID)
	_, iso := arca.NormalizeIssueDate(in.IssueDate)

	ptoVta := in.PtoVta
	if ptoVta == 0 && session.ActivePoint != nil {
		ptoVta = session.ActivePoint.Number
	}
	emitterCUIT, _ := strconv.ParseInt(onlyDigits(session.Credentials.CUIT), 10, 64)

	return &dto.PreviewInvoiceResponse{
		CbteTipo: cbteTipo,
		Letter:   class.Letter,
		ImpNeto:  computed.Net,
		ImpIVA:   computed.IVA,
		ImpTotal: computed.Total,
		Lines:    toLineResponses(computed.Lines),
		QRURL: arca.BuildQRURL(arca.QRInput{
			Fecha:      iso,
			CUIT:       emitterCUIT,
			PtoVta:     ptoVta,
			TipoCmp:    cbteTipo,
			NroCmp:     0,
			Importe:    computed.Total,
			TipoDocRec: docType.DocTipo,
			NroDocRec:  docType.DocNro,
			// Sin CodAut: el presupuesto no tiene CAE.
		}),
	}, nil
}

// ── armado de la solicitud ────────────────────────────────────────────────────

type buildArgs struct {
	class     arca.InvoiceClass
	ptoVta    int
	next      int64
	compact   string
	docType   arca.DocTypeResolution
	condIVAID int
	computed  tax.Result
	in        dto.CreateInvoiceRequest
}

func (o *Orchestrator) buildRequest(a buildArgs) (*wsfe.CAERequest, error) {
	detail := wsfe.CAEDetail{
		Concepto:  arca.ConceptoProductos,
		DocTipo:   a.docType.DocTipo,
		DocNro:    a.docType.DocNro,
		CbteDesde: a.next,
		CbteHasta: a.next,
		CbteFch:   a.compact,

		ImpTotal:   a.computed.Total.InexactFloat64(),
		ImpTotConc: 0,
		ImpNeto:    a.computed.Net.InexactFloat64(),
		ImpOpEx:    0,
		ImpIVA:     a.computed.IVA.InexactFloat64(),
		ImpTrib:    0, // otros tributos no soportados: siempre 0

		CondicionIVAReceptorId: a.condIVAID,
		MonId:                  arca.MonedaPesos,
		MonCotiz:               1,
	}

	if a.class.OmitsVatBreakdown() {
		// Familia C: se informa sin discriminar IVA y sin array de alícuotas.
		detail.ImpIVA = 0
		detail.ImpNeto = detail.ImpTotal
	} else {
		for _, agg := range a.computed.IVAAggregate {
			detail.Iva = append(detail.Iva, wsfe.AlicIva{
				Id:      agg.RateID,
				BaseImp: agg.BaseImp.InexactFloat64(),
				Importe: agg.Importe.InexactFloat64(),
			})
		}
	}

	if a.class.IsNote() && a.in.AssociatedNumber > 0 {
		origTipo := a.in.AssociatedCbteTipo
		if origTipo == 0 {
			origTipo = arca.OriginalClassForNote(a.class.Code)
		}
		asocTipo, err := arca.AssociatedDocType(origTipo)
		if err != nil {
			return nil, err
		}
		detail.CbtesAsoc = []wsfe.CbteAsoc{{Tipo: asocTipo, PtoVta: a.ptoVta, Nro: a.in.AssociatedNumber}}
	}

	return &wsfe.CAERequest{PtoVta: a.ptoVta, CbteTipo: a.class.Code, Detalle: detail}, nil
}

// ── armado del registro y del documento ──────────────────────────────────────

func (o *Orchestrator) buildRecord(
	emitterCUIT string,
	customer *entity.Customer,
	class arca.InvoiceClass,
	ptoVta int,
	nroCmp int64,
	numberStr string,
	res *wsfe.CAEResult,
	iso, qrURL string,
	computed tax.Result,
) *entity.Invoice {
	inv := &entity.Invoice{
		ID:          uuid.New().String(),
		EmitterCUIT: emitterCUIT,
		CustomerID:  customer.ID,
		CbteTipo:    class.Code,
		PtoVta:      ptoVta,
		CbteNumero:  nroCmp,
		NumberStr:   numberStr,
		CAE:         res.CAE,
		CAEVto:      res.CAEVto,
		IssueDate:   iso,
		QRURL:       qrURL,

		ImpNeto:  computed.Net,
		ImpIVA:   computed.IVA,
		ImpTotal: computed.Total,

		CustomerName:    customer.Name,
		CustomerTaxID:   customer.TaxID,
		CustomerAddress: customer.Address,
		CustomerEmail:   customer.Email,
		CustomerIVACond: customer.IVACondition,

		CreatedAt: time.Now(),
	}
	if class.OmitsVatBreakdown() {
		// Debe reflejar lo declarado ante ARCA, no el desglose interno.
		inv.ImpNeto = computed.Total
		inv.ImpIVA = decimal.Zero
	}
	return inv
}

func (o *Orchestrator) buildDocumentPayload(
	session Session,
	customer *entity.Customer,
	class arca.InvoiceClass,
	numberStr, iso string,
	res *wsfe.CAEResult,
	qrURL string,
	computed tax.Result,
) DocumentPayload {
	fantasia := session.Account.NombreFantasia
	domicilio := session.Account.Domicilio
	if session.ActivePoint != nil {
		if session.ActivePoint.NombreFantasia != "" {
			fantasia = session.ActivePoint.NombreFantasia
		}
		if session.ActivePoint.Domicilio != "" {
			domicilio = session.ActivePoint.Domicilio
		}
	}

	return DocumentPayload{
		Seller: SellerInfo{
			RazonSocial:    session.Account.RazonSocial,
			NombreFantasia: fantasia,
			Domicilio:      domicilio,
			Telefono:       session.Account.Telefono,
			CondicionIVA:   session.Account.CondicionIVA,
		},
		Header: HeaderInfo{
			CbteTipo:        class.Code,
			Letter:          class.Letter,
			Title:           class.Title,
			NumberStr:       numberStr,
			Date:            arca.DisplayDate(iso),
			CAE:             res.CAE,
			CAEVto:          res.CAEVto,
			CUIT:            FormatCUIT(session.Credentials.CUIT),
			IIBB:            session.Account.IIBB,
			InicioActividad: session.Account.InicioActividad,
			QRURL:           qrURL,
		},
		Customer: CustomerInfo{
			Name:         customer.Name,
			TaxID:        customer.TaxID,
			Domicilio:    customer.Address,
			CondicionIVA: customer.IVACondition,
			CondVenta:    "Contado",
		},
		Items:      computed.Lines,
		FooterHTML: "",
	}
}

// ── conversiones ─────────────────────────────────────────────────────────────

func toTaxItems(items []dto.InvoiceItemRequest) []tax.LineItem {
	out := make([]tax.LineItem, len(items))
	for i, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		out[i] = tax.LineItem{
			ID:          strconv.Itoa(i + 1),
			Description: it.Description,
			Code:        it.Code,
			Quantity:    qty,
			UnitPrice:   it.UnitPrice,
			DiscountPct: it.DiscountPct,
			TaxRate:     it.TaxRate,
		}
	}
	return out
}

func toEntityItems(invoiceID string, in []dto.InvoiceItemRequest, lines []tax.ComputedLine) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, len(lines))
	for i, l := range lines {
		out[i] = entity.InvoiceItem{
			ID:             uuid.New().String(),
			InvoiceID:      invoiceID,
			Description:    l.Description,
			Code:           l.Code,
			Quantity:       l.Quantity,
			DiscountPct:    in[i].DiscountPct,
			TaxRate:        l.TaxRate,
			RateID:         l.RateID,
			UnitPriceInput: in[i].UnitPrice,
			UnitNet:        l.UnitNet,
			UnitIVA:        l.UnitIVA,
			UnitFinal:      l.UnitFinal,
			LineNet:        l.LineNet,
			LineIVA:        l.LineIVA,
			LineFinal:      l.LineFinal,
		}
	}
	return out
}

func toLineResponses(lines []tax.ComputedLine) []dto.InvoiceLineResponse {
	out := make([]dto.InvoiceLineResponse, len(lines))
	for i, l := range lines {
		out[i] = dto.InvoiceLineResponse{
			Description: l.Description,
			Code:        l.Code,
			Quantity:    l.Quantity,
			TaxRate:     l.TaxRate,
			UnitNet:     l.UnitNet,
			UnitIVA:     l.UnitIVA,
			UnitFinal:   l.UnitFinal,
			LineNet:     l.LineNet,
			LineIVA:     l.LineIVA,
			LineFinal:   l.LineFinal,
		}
	}
	return out
}

// FormatCUIT imprime un CUIT como NN-NNNNNNNN-N. Si la entrada no tiene 11
// dígitos se devuelve tal cual.
func FormatCUIT(cuit string) string {
	d := onlyDigits(cuit)
	if len(d) != 11 {
		return cuit
	}
	return d[:2] + "-" + d[2:10] + "-" + d[10:]
}

func onlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
