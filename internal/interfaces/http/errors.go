package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: se devuelve la primera coincidencia con errors.Is.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrQuantityTooLarge, fiber.StatusUnprocessableEntity, "QUANTITY_TOO_LARGE", "cantidad supera el máximo por operación"},
	{domain.ErrLotArchived, fiber.StatusConflict, "LOT_ARCHIVED", "el lote está archivado"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION", "transición de estado no permitida"},
	{domain.ErrAllocationConflict, fiber.StatusConflict, "ALLOCATION_CONFLICT", "los seriales fueron asignados por otra operación; reintente"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrTransient, fiber.StatusServiceUnavailable, "UNAVAILABLE", "almacenamiento no disponible, intente más tarde"},
}

// writeError traduce errores del dominio a la respuesta HTTP. Los no reconocidos se registran y devuelven 500.
// Una materialización interrumpida informa además cuántos seriales se alcanzaron a persistir.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	stage := string(domain.StageOf(err))
	var report *dto.MaterializationReport
	var me *domain.MaterializeError
	if errors.As(err, &me) {
		report = &dto.MaterializationReport{LotID: me.LotID, Requested: me.Requested, Succeeded: me.Succeeded}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message, Stage: stage, Materialization: report})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Str("stage", stage).Msg("error no controlado")
	if report != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:            "MATERIALIZE_INCOMPLETE",
			Message:         "seriales generados parcialmente; reanude la materialización del lote",
			Stage:           stage,
			Materialization: report,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno", Stage: stage})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
