package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facturalo/facturalo-api/internal/application/billing"
	"github.com/facturalo/facturalo-api/internal/application/dto"
	"github.com/facturalo/facturalo-api/internal/domain"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
	"github.com/facturalo/facturalo-api/internal/infrastructure/wsfe"
	"github.com/facturalo/facturalo-api/pkg/arca"
	"github.com/facturalo/facturalo-api/pkg/config"
)

// Headers con el ticket WSAA vigente. El ticket lo gestiona el caller (dura
// 12 horas); esta API nunca lo persiste.
const (
	HeaderWSAAToken = "X-WSAA-Token"
	HeaderWSAASign  = "X-WSAA-Sign"
)

// InvoiceHandler maneja la emisión y consulta de comprobantes (protegido).
type InvoiceHandler struct {
	orchestrator *billing.Orchestrator
	queries      *billing.InvoiceQueryUseCase
	emisor       config.EmisorConfig
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(orchestrator *billing.Orchestrator, queries *billing.InvoiceQueryUseCase, emisor config.EmisorConfig) *InvoiceHandler {
	return &InvoiceHandler{orchestrator: orchestrator, queries: queries, emisor: emisor}
}

// session arma la foto de sesión del intento: ticket WSAA de los headers,
// CUIT del JWT y datos del emisor de la configuración.
func (h *InvoiceHandler) session(c *fiber.Ctx) billing.Session {
	cuit := GetCUIT(c)
	if cuit == "" {
		cuit = h.emisor.CUIT
	}
	return billing.Session{
		Credentials: billing.Credentials{
			Token: c.Get(HeaderWSAAToken),
			Sign:  c.Get(HeaderWSAASign),
			CUIT:  cuit,
		},
		ActivePoint: &billing.PointOfSale{
			Number:         h.emisor.PtoVta,
			NombreFantasia: h.emisor.NombreFantasia,
			Domicilio:      h.emisor.Domicilio,
		},
		Account: billing.Account{
			RazonSocial:     h.emisor.RazonSocial,
			NombreFantasia:  h.emisor.NombreFantasia,
			Domicilio:       h.emisor.Domicilio,
			Telefono:        h.emisor.Telefono,
			CondicionIVA:    h.emisor.CondicionIVA,
			IIBB:            h.emisor.IIBB,
			InicioActividad: h.emisor.InicioActividad,
		},
	}
}

// Authorize emite un comprobante: calcula, solicita CAE a ARCA, persiste y
// genera el PDF. Con ?format=pdf devuelve la representación impresa.
// POST /api/invoices
func (h *InvoiceHandler) Authorize(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	outcome, err := h.orchestrator.Authorize(c.Context(), h.session(c), in)
	if err != nil {
		return billingError(c, err)
	}
	if c.Query("format") == "pdf" && outcome.PDF != nil {
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="Factura-`+outcome.Response.NumberStr+`.pdf"`)
		return c.Status(fiber.StatusCreated).Send(outcome.PDF)
	}
	return c.Status(fiber.StatusCreated).JSON(outcome.Response)
}

// Preview calcula totales, clasificación y QR sin tocar ARCA ni persistir.
// POST /api/invoices/preview
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	preview, err := h.orchestrator.Preview(c.Context(), h.session(c), in)
	if err != nil {
		return billingError(c, err)
	}
	return c.JSON(preview)
}

// List GET /api/invoices?cbte_tipo=6&pto_vta=4&customer_id=...&limit=50&offset=0
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	cuit := GetCUIT(c)
	if cuit == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	cbteTipo, _ := strconv.Atoi(c.Query("cbte_tipo", "0"))
	ptoVta, _ := strconv.Atoi(c.Query("pto_vta", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	list, err := h.queries.List(c.Context(), cuit, repository.InvoiceFilter{
		CbteTipo:   cbteTipo,
		PtoVta:     ptoVta,
		CustomerID: c.Query("customer_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	cuit := GetCUIT(c)
	if cuit == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	detail, err := h.queries.Get(c.Context(), cuit, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(detail)
}

// RenderPDF vuelve a generar la representación impresa de un comprobante ya
// autorizado, a partir del historial.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) RenderPDF(c *fiber.Ctx) error {
	cuit := GetCUIT(c)
	if cuit == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	pdf, filename, err := h.queries.RenderPDF(c.Context(), cuit, id, h.session(c).Account)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// billingError traduce los errores del flujo de emisión a códigos HTTP:
// fallas de entrada → 400, rechazos de ARCA → 422, fallas de red o de
// esquema del proxy → 502.
func billingError(c *fiber.Ctx, err error) error {
	var valErr *billing.ValidationError
	if errors.As(err, &valErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: valErr.Reason})
	}
	var classErr *arca.ClassificationError
	if errors.As(err, &classErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CLASSIFICATION", Message: classErr.Error()})
	}
	var authErr *wsfe.AuthorizationError
	if errors.As(err, &authErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "ARCA_REJECTED",
			Message: authErr.Error(),
		})
	}
	var implErr *wsfe.ImplicitRejectionError
	if errors.As(err, &implErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "ARCA_REJECTED",
			Message: implErr.Error(),
		})
	}
	var netErr *wsfe.NetworkError
	if errors.As(err, &netErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "WSFE_UNAVAILABLE", Message: netErr.Error()})
	}
	var schemaErr *wsfe.SchemaError
	if errors.As(err, &schemaErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "WSFE_SCHEMA", Message: schemaErr.Error()})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
