package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/facturalo/facturalo-api/internal/application/billing"
	"github.com/facturalo/facturalo-api/internal/application/dto"
	"github.com/facturalo/facturalo-api/internal/domain"
)

// CustomerHandler maneja las peticiones HTTP de clientes (protegido).
type CustomerHandler struct {
	uc *billing.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *billing.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	cuit := GetCUIT(c)
	if cuit == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	customer, err := h.uc.Create(c.Context(), cuit, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe un cliente con ese CUIT/DNI"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// List GET /api/customers
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	cuit := GetCUIT(c)
	if cuit == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.uc.List(c.Context(), cuit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	cuit := GetCUIT(c)
	if cuit == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	customer, err := h.uc.Get(c.Context(), cuit, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(customer)
}
