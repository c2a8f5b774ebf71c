package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// LotHandler expone la generación, asignación, ciclo de vida y consulta de lotes (protegido).
type LotHandler struct {
	orchestrator *lots.Orchestrator
	allocator    *lots.Allocator
	status       *lots.StatusUseCase
	queries      *lots.QueryUseCase
	validate     *validator.Validate
	log          *logger.Logger
}

// NewLotHandler construye el handler.
func NewLotHandler(
	orchestrator *lots.Orchestrator,
	allocator *lots.Allocator,
	status *lots.StatusUseCase,
	queries *lots.QueryUseCase,
	log *logger.Logger,
) *LotHandler {
	return &LotHandler{
		orchestrator: orchestrator,
		allocator:    allocator,
		status:       status,
		queries:      queries,
		validate:     newValidator(),
		log:          log.Component("http"),
	}
}

// GenerateForSale godoc
// @Summary      Generar lotes para una venta
// @Description  Cubre cada línea de la venta con inventario existente (FIFO, dividiendo lotes si hace falta)
//               y crea un lote pendiente con sus seriales por el faltante. Devuelve solo los lotes nuevos.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      201  {array}   dto.LotDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/lots [post]
func (h *LotHandler) GenerateForSale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	created, err := h.orchestrator.GenerateLotsForSale(c.Context(), c.Params("id"), companyID, userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLots(created))
}

// ListForSale godoc
// @Summary      Lotes de una venta
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {array}   dto.LotDTO
// @Router       /api/sales/{id}/lots [get]
func (h *LotHandler) ListForSale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	list, err := h.queries.LotsForSale(c.Context(), c.Params("id"), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromLots(list))
}

// PreviewAllocation godoc
// @Summary      Previsualizar asignación FIFO
// @Description  Calcula qué seriales existentes cubrirían la cantidad pedida sin reservarlos.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AllocationPreviewRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.AllocationDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/lots/allocations [post]
func (h *LotHandler) PreviewAllocation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.AllocationPreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	alloc, err := h.allocator.Allocate(c.Context(), in.ProductID, in.Quantity, companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromAllocation(alloc))
}

// UpdateStatus godoc
// @Summary      Cambiar estado de un lote
// @Description  pending → in_inventory (entrada en kardex) o in_inventory → delivered (salida). Actualiza los seriales.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "ID del lote"
// @Param        body  body      dto.UpdateLotStatusRequest  true  "status"
// @Success      200   {object}  dto.LotDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/status [patch]
func (h *LotHandler) UpdateStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateLotStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	l, err := h.status.UpdateLotStatus(c.Context(), companyID, c.Params("id"), in.Status, userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromLot(l))
}

// List godoc
// @Summary      Listar lotes
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        status            query  string  false  "pending | in_inventory | delivered"
// @Param        product_id        query  string  false  "Filtrar por producto"
// @Param        sale_id           query  string  false  "Filtrar por venta"
// @Param        search            query  string  false  "Número de lote o código de producto"
// @Param        include_archived  query  bool    false  "Incluir lotes divididos"
// @Param        limit             query  int     false  "Máximo 500 (default 50)"
// @Param        offset            query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.LotDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.ListLotsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	list, err := h.queries.ListLots(c.Context(), companyID, repository.LotFilter{
		Status:          in.Status,
		ProductID:       in.ProductID,
		SaleID:          in.SaleID,
		Search:          in.Search,
		IncludeArchived: in.IncludeArchived,
		Limit:           in.Limit,
		Offset:          in.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromLots(list))
}

// Serials godoc
// @Summary      Seriales de un lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {array}   dto.SerialDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/serials [get]
func (h *LotHandler) Serials(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	list, err := h.queries.SerialsForLot(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromSerials(list))
}

// ResumeMaterialization godoc
// @Summary      Completar seriales de un lote
// @Description  Reintenta la materialización de un lote que quedó incompleto; los seriales existentes no se duplican.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  dto.LotDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/materialize [post]
func (h *LotHandler) ResumeMaterialization(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	l, err := h.orchestrator.ResumeMaterialization(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromLot(l))
}

// Movements godoc
// @Summary      Kardex de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Máximo 500 (default 50)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if err := h.validate.Struct(page); err != nil {
		return validationError(c, err)
	}
	page.DefaultPage()
	list, err := h.queries.Kardex(c.Context(), companyID, c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromMovements(list))
}
