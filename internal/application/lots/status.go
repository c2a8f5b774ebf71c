package lots

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// StatusUseCase aplica la máquina de estados del lote con cascada a seriales y kardex,
// todo en una sola transacción con el producto bloqueado.
type StatusUseCase struct {
	tx     TxRunner
	lots   repository.LotRepository
	ledger *Ledger
	log    *logger.Logger
	now    func() time.Time
}

// NewStatusUseCase construye el caso de uso.
func NewStatusUseCase(tx TxRunner, lots repository.LotRepository, ledger *Ledger, log *logger.Logger) *StatusUseCase {
	return &StatusUseCase{tx: tx, lots: lots, ledger: ledger, log: log.Component("lot_status"), now: time.Now}
}

// movementOpts datos contables opcionales del movimiento generado por la transición.
type movementOpts struct {
	UnitCost          *decimal.Decimal
	ReferenceDocument string
}

// UpdateLotStatus pasa el lote a newStatus. pending -> in_inventory cascada los seriales pendientes
// y registra una entrada; in_inventory -> delivered entrega todos los seriales y registra una salida.
func (uc *StatusUseCase) UpdateLotStatus(ctx context.Context, companyID, lotID, newStatus, actorID string) (*entity.Lot, error) {
	return uc.transition(ctx, companyID, lotID, newStatus, actorID, movementOpts{})
}

func (uc *StatusUseCase) transition(ctx context.Context, companyID, lotID, newStatus, actorID string, opts movementOpts) (*entity.Lot, error) {
	if lotID == "" || !lot.IsValidStatus(newStatus) {
		return nil, domain.ErrInvalidInput
	}
	current, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if current.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	var updated *entity.Lot
	err = uc.tx.Run(ctx, func(tx Repos) error {
		if _, err := tx.Products.GetForUpdate(ctx, current.ProductID); err != nil {
			return err
		}
		// releer con el producto bloqueado: otra transacción pudo dividir o archivar el lote
		l, err := tx.Lots.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrNotFound
		}
		if err := uc.apply(ctx, tx, l, newStatus, actorID, opts); err != nil {
			return err
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("lot_id", updated.ID).
		Str("lot_number", updated.LotNumber).
		Str("from", current.Status).
		Str("to", newStatus).
		Msg("estado de lote actualizado")
	return updated, nil
}

// apply ejecuta la transición dentro de tx. El llamador debe tener bloqueado el producto del lote.
func (uc *StatusUseCase) apply(ctx context.Context, tx Repos, l *entity.Lot, to, actorID string, opts movementOpts) error {
	if err := lot.CanTransition(l, to); err != nil {
		return err
	}
	now := uc.now()
	if err := tx.Lots.UpdateStatus(ctx, l.ID, to, now); err != nil {
		return err
	}
	from, serialStatus := lot.SerialCascade(to)
	if _, err := tx.Serials.UpdateStatusByLot(ctx, l.ID, from, serialStatus); err != nil {
		return err
	}

	l.Status = to
	switch to {
	case entity.LotStatusInInventory:
		l.IngressDate = &now
	case entity.LotStatusDelivered:
		l.DeliveryDate = &now
	}

	movementType := lot.LedgerEffect(to)
	if movementType == "" || l.Quantity <= 0 {
		return nil
	}
	if actorID == "" {
		actorID = l.CreatedBy
	}
	reference := opts.ReferenceDocument
	if reference == "" {
		reference = l.LotNumber
	}
	_, err := uc.ledger.Record(ctx, tx, MovementInput{
		ProductID:         l.ProductID,
		CompanyID:         l.CompanyID,
		LotID:             l.ID,
		ActorID:           actorID,
		Type:              movementType,
		Quantity:          int64(l.Quantity),
		Reason:            lot.MovementReason(movementType, l.LotNumber),
		ReferenceDocument: reference,
		UnitCost:          opts.UnitCost,
	})
	return domain.AtStage(domain.StageLedger, err)
}
