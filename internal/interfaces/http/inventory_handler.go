package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// InventoryHandler maneja las entradas directas de inventario y la conciliación de stock (protegido).
type InventoryHandler struct {
	orchestrator *lots.Orchestrator
	reconcile    *lots.ReconcileUseCase
	validate     *validator.Validate
	log          *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(orchestrator *lots.Orchestrator, reconcile *lots.ReconcileUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{orchestrator: orchestrator, reconcile: reconcile, validate: newValidator(), log: log.Component("http")}
}

// RegisterEntry godoc
// @Summary      Registrar entrada de inventario
// @Description  Crea un lote de inventario general con sus seriales, lo ingresa a bodega y registra la entrada en el kardex.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InventoryEntryRequest  true  "product_id, quantity, unit_cost (opcional), reference_document"
// @Success      201   {object}  dto.LotDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) RegisterEntry(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.InventoryEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	l, err := h.orchestrator.RegisterEntry(c.Context(), lots.EntryInput{
		ProductID:         in.ProductID,
		Quantity:          in.Quantity,
		CompanyID:         companyID,
		ActorID:           userID,
		UnitCost:          in.UnitCost,
		ReferenceDocument: in.ReferenceDocument,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLot(l))
}

// Reconcile godoc
// @Summary      Conciliar stock contra kardex y seriales
// @Description  Compara current_stock con la suma del kardex y los seriales en bodega. Con repair=true recalcula el stock desde el kardex.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileRequest  false  "repair"
// @Success      200   {array}   dto.StockDiscrepancyDTO
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.reconcile.Run(c.Context(), companyID, in.Repair)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromDiscrepancies(out))
}
