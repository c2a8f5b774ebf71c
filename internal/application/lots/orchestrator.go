package lots

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// maxLotNumberAttempts reintentos cuando el contador entrega un número de lote ya usado.
const maxLotNumberAttempts = 3

// Orchestrator coordina asignación y generación de lotes para ventas y entradas de inventario.
type Orchestrator struct {
	sales        repository.SaleRepository
	products     repository.ProductRepository
	lots         repository.LotRepository
	sequence     repository.LotNumberSequence
	allocator    *Allocator
	materializer *Materializer
	status       *StatusUseCase
	log          *logger.Logger
	now          func() time.Time
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	lots repository.LotRepository,
	sequence repository.LotNumberSequence,
	allocator *Allocator,
	materializer *Materializer,
	status *StatusUseCase,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		sales:        sales,
		products:     products,
		lots:         lots,
		sequence:     sequence,
		allocator:    allocator,
		materializer: materializer,
		status:       status,
		log:          log.Component("orchestrator"),
		now:          time.Now,
	}
}

// GenerateLotsForSale cubre cada línea de la venta primero con inventario existente (FIFO) y crea
// un lote pendiente con sus seriales por el faltante. Devuelve solo los lotes nuevos.
// Los errores indican la etapa que falló (*domain.StageError). Ante un error no se devuelven lotes;
// lo ya confirmado no se deshace y queda visible con LotsForSale.
func (o *Orchestrator) GenerateLotsForSale(ctx context.Context, saleID, companyID, actorID string) ([]*entity.Lot, error) {
	if saleID == "" || companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	items, err := o.sales.ListItems(ctx, saleID, companyID)
	if err != nil {
		return nil, domain.AtStage(domain.StageSaleItems, err)
	}

	created := make([]*entity.Lot, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if err := o.materializer.CheckQuantity(item.Quantity); err != nil {
			return nil, domain.AtStage(domain.StageMaterialize, err)
		}

		alloc, err := o.allocator.AllocateForSale(ctx, item.ProductID, item.Quantity, companyID, saleID, actorID)
		if err != nil {
			return nil, domain.AtStage(domain.StageAllocate, err)
		}
		if alloc.RemainingQty == 0 {
			continue
		}

		l := &entity.Lot{
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			CompanyID:   companyID,
			SaleID:      saleID,
			Quantity:    alloc.RemainingQty,
			CreatedBy:   actorID,
		}
		if l.ProductCode == "" {
			if err := o.fillProduct(ctx, l); err != nil {
				return nil, domain.AtStage(domain.StageCreateLot, err)
			}
		}
		if err := o.createLot(ctx, l); err != nil {
			return nil, err
		}
		serials, err := o.materializer.Materialize(ctx, l, l.Quantity)
		if err != nil {
			return nil, domain.AtStage(domain.StageMaterialize, err)
		}
		l.Serials = serials
		created = append(created, l)
	}

	o.log.Info().Str("sale_id", saleID).Int("lots", len(created)).Msg("lotes generados para venta")
	return created, nil
}

// EntryInput entrada directa de inventario (sin venta).
type EntryInput struct {
	ProductID         string
	Quantity          int
	CompanyID         string
	ActorID           string
	UnitCost          *decimal.Decimal
	ReferenceDocument string
}

// RegisterInventoryEntry crea un lote de inventario general ya ingresado a bodega.
func (o *Orchestrator) RegisterInventoryEntry(ctx context.Context, productID string, quantity int, companyID, actorID string) (*entity.Lot, error) {
	return o.RegisterEntry(ctx, EntryInput{ProductID: productID, Quantity: quantity, CompanyID: companyID, ActorID: actorID})
}

// RegisterEntry crea el lote como pendiente, materializa sus seriales y lo pasa a in_inventory,
// de modo que la entrada de kardex queda en la misma transacción que el cambio de estado.
func (o *Orchestrator) RegisterEntry(ctx context.Context, in EntryInput) (*entity.Lot, error) {
	if in.ProductID == "" || in.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := o.materializer.CheckQuantity(in.Quantity); err != nil {
		return nil, err
	}

	l := &entity.Lot{ProductID: in.ProductID, CompanyID: in.CompanyID, Quantity: in.Quantity, CreatedBy: in.ActorID}
	if err := o.fillProduct(ctx, l); err != nil {
		return nil, domain.AtStage(domain.StageCreateLot, err)
	}
	if err := o.createLot(ctx, l); err != nil {
		return nil, err
	}
	if _, err := o.materializer.Materialize(ctx, l, l.Quantity); err != nil {
		return nil, domain.AtStage(domain.StageMaterialize, err)
	}

	updated, err := o.status.transition(ctx, in.CompanyID, l.ID, entity.LotStatusInInventory, in.ActorID, movementOpts{
		UnitCost:          in.UnitCost,
		ReferenceDocument: in.ReferenceDocument,
	})
	if err != nil {
		return nil, domain.AtStage(domain.StageTransition, err)
	}
	withSerials, err := o.lots.GetWithSerials(ctx, updated.ID)
	if err != nil || withSerials == nil {
		return updated, nil
	}
	return withSerials, nil
}

// ResumeMaterialization completa los seriales faltantes de un lote cuya materialización falló.
// Los seriales ya persistidos no se duplican. Los lotes nacidos de una división no se rematerializan.
func (o *Orchestrator) ResumeMaterialization(ctx context.Context, companyID, lotID string) (*entity.Lot, error) {
	l, err := o.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if l.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if l.IsArchived {
		return nil, domain.ErrLotArchived
	}
	// los hijos de una división conservan los seriales del padre; regenerarlos duplicaría unidades
	if l.ParentLotID != "" {
		return nil, domain.ErrConflict
	}
	serials, err := o.materializer.Materialize(ctx, l, l.Quantity)
	if err != nil {
		return nil, domain.AtStage(domain.StageMaterialize, err)
	}
	l.Serials = serials
	return l, nil
}

func (o *Orchestrator) fillProduct(ctx context.Context, l *entity.Lot) error {
	p, err := o.products.GetByID(ctx, l.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if p.CompanyID != l.CompanyID {
		return domain.ErrForbidden
	}
	l.ProductCode = p.Code
	if l.ProductName == "" {
		l.ProductName = p.Name
	}
	return nil
}

// createLot asigna número de lote y persiste el lote como pendiente.
func (o *Orchestrator) createLot(ctx context.Context, l *entity.Lot) error {
	if l.ProductCode == "" {
		return domain.AtStage(domain.StageLotNumber, domain.ErrInvalidInput)
	}
	now := o.now()
	l.Status = entity.LotStatusPending
	l.GeneratedDate = now

	for attempt := 1; ; attempt++ {
		number, err := o.sequence.NextLotNumber(ctx, l.ProductCode, now)
		if err != nil {
			return domain.AtStage(domain.StageLotNumber, err)
		}
		l.LotNumber = number
		err = o.lots.Create(ctx, l)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt >= maxLotNumberAttempts {
			return domain.AtStage(domain.StageCreateLot, err)
		}
		o.log.Warn().Str("lot_number", number).Msg("número de lote ya usado, solicitando otro")
	}
}
