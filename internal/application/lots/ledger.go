package lots

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

const pendingAccountingNote = "Movimiento automático de lote - Pendiente de completar información contable"

// MovementInput datos de un movimiento de kardex.
type MovementInput struct {
	ProductID         string
	CompanyID         string
	LotID             string
	ActorID           string
	Type              string
	Quantity          int64
	Reason            string
	ReferenceDocument string
	UnitCost          *decimal.Decimal
}

// Ledger registra movimientos de kardex y mantiene el contador de stock del producto.
// Es la única vía por la que cambia current_stock.
type Ledger struct {
	log *logger.Logger
	now func() time.Time
}

// NewLedger construye el kardex.
func NewLedger(log *logger.Logger) *Ledger {
	return &Ledger{log: log.Component("ledger"), now: time.Now}
}

// Record agrega el movimiento y ajusta el stock dentro de la transacción tx.
// Una salida mayor al stock se recorta al stock disponible: se registra la cantidad efectiva
// y la solicitada queda en RequestedQuantity.
func (l *Ledger) Record(ctx context.Context, tx Repos, in MovementInput) (*entity.Movement, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Type != entity.MovementTypeEntrada && in.Type != entity.MovementTypeSalida {
		return nil, domain.ErrInvalidInput
	}

	product, err := tx.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	effective := in.Quantity
	delta := effective
	if in.Type == entity.MovementTypeSalida {
		if product.CurrentStock < effective {
			effective = max(product.CurrentStock, 0)
			l.log.Warn().
				Str("product_id", in.ProductID).
				Str("lot_id", in.LotID).
				Int64("requested", in.Quantity).
				Int64("applied", effective).
				Msg("salida recortada al stock disponible")
		}
		delta = -effective
	}

	now := l.now()
	m := &entity.Movement{
		ProductID:         in.ProductID,
		CompanyID:         in.CompanyID,
		LotID:             in.LotID,
		Type:              in.Type,
		Quantity:          effective,
		RequestedQuantity: in.Quantity,
		Reason:            in.Reason,
		ReferenceDocument: in.ReferenceDocument,
		UnitCost:          in.UnitCost,
		TotalCost:         lot.TotalCost(in.UnitCost, effective),
		MovementDate:      now,
		CreatedBy:         in.ActorID,
		CreatedAt:         now,
	}
	if in.UnitCost == nil {
		m.Notes = pendingAccountingNote
	}
	if err := tx.Movements.Create(ctx, m); err != nil {
		return nil, err
	}
	if delta != 0 {
		if _, err := tx.Products.AdjustStock(ctx, in.ProductID, delta); err != nil {
			return nil, err
		}
	}
	return m, nil
}
