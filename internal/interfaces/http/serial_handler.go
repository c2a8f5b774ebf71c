package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// SerialHandler consulta pública de seriales para garantía.
type SerialHandler struct {
	queries *lots.QueryUseCase
	log     *logger.Logger
}

// NewSerialHandler construye el handler.
func NewSerialHandler(queries *lots.QueryUseCase, log *logger.Logger) *SerialHandler {
	return &SerialHandler{queries: queries, log: log.Component("http")}
}

// Validate godoc
// @Summary      Validar serial y garantía
// @Description  Endpoint público. Devuelve el estado del serial y, si fue entregado, la vigencia de la garantía (12 meses).
// @Tags         public
// @Produce      json
// @Param        serial  path      string  true  "Número de serial"
// @Success      200     {object}  dto.SerialValidationDTO
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/public/serials/{serial}/validate [get]
func (h *SerialHandler) Validate(c *fiber.Ctx) error {
	v, err := h.queries.ValidateSerial(c.Context(), c.Params("serial"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromSerialValidation(v))
}
