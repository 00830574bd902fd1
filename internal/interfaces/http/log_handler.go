package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facturalo/facturalo-api/internal/application/billing"
	"github.com/facturalo/facturalo-api/internal/application/dto"
)

// LogHandler expone el historial de intentos WSFE de la cuenta emisora.
type LogHandler struct {
	uc *billing.WSFELogUseCase
}

// NewLogHandler construye el handler.
func NewLogHandler(uc *billing.WSFELogUseCase) *LogHandler {
	return &LogHandler{uc: uc}
}

// List godoc
// @Summary      Historial de intentos de autorización WSFE
// @Tags         logs
// @Produce      json
// @Param        limit  query  int  false  "máximo de registros (default 50, tope 200)"
// @Success      200  {array}   dto.WSFELogResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/logs [get]
func (h *LogHandler) List(c *fiber.Ctx) error {
	cuit := GetCUIT(c)
	if cuit == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	logs, err := h.uc.List(c.Context(), cuit, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(logs)
}
