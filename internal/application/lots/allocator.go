package lots

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// DefaultAllocationRetries reintentos ante ErrAllocationConflict en AllocateForSale.
const DefaultAllocationRetries = 3

// Allocator asigna unidades existentes a ventas en orden FIFO y divide lotes consumidos parcialmente.
type Allocator struct {
	tx      TxRunner
	lots    repository.LotRepository
	ledger  *Ledger
	retries int
	log     *logger.Logger
	now     func() time.Time
}

// NewAllocator construye el asignador. retries <= 0 usa DefaultAllocationRetries.
func NewAllocator(tx TxRunner, lots repository.LotRepository, ledger *Ledger, retries int, log *logger.Logger) *Allocator {
	if retries <= 0 {
		retries = DefaultAllocationRetries
	}
	return &Allocator{tx: tx, lots: lots, ledger: ledger, retries: retries, log: log.Component("allocator"), now: time.Now}
}

// Allocate planifica la asignación sin modificar nada. El plan puede quedar obsoleto;
// CommitAllocation lo detecta y responde ErrAllocationConflict.
func (a *Allocator) Allocate(ctx context.Context, productID string, requested int, companyID string) (*lot.Allocation, error) {
	if productID == "" || requested <= 0 {
		return nil, domain.ErrInvalidInput
	}
	available, err := a.lots.ListAvailable(ctx, productID, companyID, availableStatuses)
	if err != nil {
		return nil, err
	}
	return lot.AllocateFIFO(productID, available, requested), nil
}

// CommitAllocation aplica un plan de Allocate a la venta saleID en una transacción.
func (a *Allocator) CommitAllocation(ctx context.Context, alloc *lot.Allocation, saleID, companyID, actorID string) error {
	if alloc == nil || saleID == "" {
		return domain.ErrInvalidInput
	}
	if len(alloc.AllocatedLots) == 0 {
		return nil
	}
	return a.tx.Run(ctx, func(tx Repos) error {
		if err := lockProduct(ctx, tx, alloc.ProductID, companyID); err != nil {
			return err
		}
		return a.commit(ctx, tx, alloc, saleID, actorID)
	})
}

// AllocateForSale planifica y confirma en la misma transacción, con el producto bloqueado.
// Ante ErrAllocationConflict reintenta con un plan nuevo.
func (a *Allocator) AllocateForSale(ctx context.Context, productID string, requested int, companyID, saleID, actorID string) (*lot.Allocation, error) {
	if productID == "" || saleID == "" || requested <= 0 {
		return nil, domain.ErrInvalidInput
	}
	for attempt := 1; ; attempt++ {
		var alloc *lot.Allocation
		err := a.tx.Run(ctx, func(tx Repos) error {
			if err := lockProduct(ctx, tx, productID, companyID); err != nil {
				return domain.AtStage(domain.StageAllocate, err)
			}
			available, err := tx.Lots.ListAvailable(ctx, productID, companyID, availableStatuses)
			if err != nil {
				return domain.AtStage(domain.StageAllocate, err)
			}
			alloc = lot.AllocateFIFO(productID, available, requested)
			return a.commit(ctx, tx, alloc, saleID, actorID)
		})
		if err == nil {
			a.log.Info().
				Str("product_id", productID).
				Str("sale_id", saleID).
				Int("requested", requested).
				Int("allocated", alloc.Allocated()).
				Int("remaining", alloc.RemainingQty).
				Msg("asignación FIFO confirmada")
			return alloc, nil
		}
		if !errors.Is(err, domain.ErrAllocationConflict) || attempt > a.retries {
			return nil, err
		}
		a.log.Warn().Err(err).Int("attempt", attempt).Str("product_id", productID).Msg("conflicto de asignación, reintentando")
	}
}

func lockProduct(ctx context.Context, tx Repos, productID, companyID string) error {
	p, err := tx.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if companyID != "" && p.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

// commit marca los seriales como vendidos y asienta cada lote tocado: sin cambios, vinculado a la venta
// o dividido en S1/S2.
func (a *Allocator) commit(ctx context.Context, tx Repos, alloc *lot.Allocation, saleID, actorID string) error {
	for _, la := range alloc.AllocatedLots {
		ids := lot.SerialIDs(la.Serials)
		n, err := tx.Serials.MarkSold(ctx, la.LotID, ids, saleID)
		if err != nil {
			return domain.AtStage(domain.StageCommit, err)
		}
		if n != int64(len(ids)) {
			return domain.AtStage(domain.StageCommit, domain.ErrAllocationConflict)
		}
		if err := a.settle(ctx, tx, la.LotID, saleID, actorID); err != nil {
			return domain.AtStage(domain.StageCommit, err)
		}
	}
	return nil
}

func (a *Allocator) settle(ctx context.Context, tx Repos, lotID, saleID, actorID string) error {
	parent, err := tx.Lots.GetWithSerials(ctx, lotID)
	if err != nil {
		return err
	}
	if parent == nil {
		return domain.ErrAllocationConflict
	}
	plan := lot.PlanSplit(parent.Serials)
	switch plan.Outcome {
	case lot.SplitNone:
		return nil
	case lot.SplitFull:
		return tx.Lots.LinkSale(ctx, parent.ID, saleID)
	}
	return a.split(ctx, tx, parent, plan, saleID, actorID)
}

// split reemplaza al padre por S1 (vendido, con la venta) y S2 (remanente, inventario general).
// Los seriales conservan número y secuencia. Si el padre estaba pendiente, S2 entra a bodega
// con su entrada de kardex.
func (a *Allocator) split(ctx context.Context, tx Repos, parent *entity.Lot, plan lot.SplitPlan, saleID, actorID string) error {
	now := a.now()
	child := func(suffix string) *entity.Lot {
		return &entity.Lot{
			LotNumber:     lot.SplitLotNumber(parent.LotNumber, suffix),
			ProductID:     parent.ProductID,
			ProductCode:   parent.ProductCode,
			ProductName:   parent.ProductName,
			CompanyID:     parent.CompanyID,
			ParentLotID:   parent.ID,
			GeneratedDate: parent.GeneratedDate,
			IngressDate:   parent.IngressDate,
			CreatedBy:     parent.CreatedBy,
		}
	}

	sold := child(lot.SuffixSold)
	sold.SaleID = saleID
	sold.Status = parent.Status
	sold.Quantity = len(plan.Sold)

	remainder := child(lot.SuffixRemainder)
	remainder.Status = entity.LotStatusInInventory
	remainder.Quantity = len(plan.Remaining)
	if remainder.IngressDate == nil {
		remainder.IngressDate = &now
	}

	for _, l := range []*entity.Lot{sold, remainder} {
		if err := tx.Lots.Create(ctx, l); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrAllocationConflict
			}
			return err
		}
	}
	if err := tx.Serials.Reassign(ctx, lot.SerialIDs(plan.Sold), sold.ID); err != nil {
		return err
	}
	if err := tx.Serials.Reassign(ctx, lot.SerialIDs(plan.Remaining), remainder.ID); err != nil {
		return err
	}
	if err := tx.Lots.Archive(ctx, parent.ID); err != nil {
		return err
	}

	if parent.Status == entity.LotStatusPending {
		if _, err := tx.Serials.UpdateStatusByLot(ctx, remainder.ID, []string{entity.SerialStatusPending}, entity.SerialStatusInInventory); err != nil {
			return err
		}
		if _, err := a.ledger.Record(ctx, tx, MovementInput{
			ProductID:         remainder.ProductID,
			CompanyID:         remainder.CompanyID,
			LotID:             remainder.ID,
			ActorID:           actorID,
			Type:              entity.MovementTypeEntrada,
			Quantity:          int64(remainder.Quantity),
			Reason:            lot.MovementReason(entity.MovementTypeEntrada, remainder.LotNumber),
			ReferenceDocument: remainder.LotNumber,
		}); err != nil {
			return domain.AtStage(domain.StageLedger, err)
		}
	}

	a.log.Info().
		Str("parent_lot", parent.LotNumber).
		Str("sold_lot", sold.LotNumber).
		Int("sold", sold.Quantity).
		Str("remainder_lot", remainder.LotNumber).
		Int("remaining", remainder.Quantity).
		Msg("lote dividido por venta parcial")
	return nil
}
