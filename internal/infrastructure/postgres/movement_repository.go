package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex (tabla inventory_movements, solo inserción).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_movements (id, product_id, company_id, lot_id, type, quantity, requested_quantity,
			reason, notes, reference_document, unit_cost, total_cost, movement_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		m.ID, m.ProductID, m.CompanyID, nullable(m.LotID), m.Type, m.Quantity, m.RequestedQuantity,
		m.Reason, m.Notes, m.ReferenceDocument, m.UnitCost, m.TotalCost, m.MovementDate, nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert movement", err)
	}
	return nil
}

func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, company_id, lot_id, type, quantity, requested_quantity, reason, notes,
			reference_document, unit_cost, total_cost, movement_date, created_by, created_at
		FROM inventory_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, wrapErr("list movements", err)
	}
	defer rows.Close()

	out := make([]*entity.Movement, 0)
	for rows.Next() {
		var m entity.Movement
		var lotID, createdBy *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.CompanyID, &lotID, &m.Type, &m.Quantity, &m.RequestedQuantity,
			&m.Reason, &m.Notes, &m.ReferenceDocument, &m.UnitCost, &m.TotalCost, &m.MovementDate, &createdBy, &m.CreatedAt); err != nil {
			return nil, wrapErr("scan movement", err)
		}
		m.LotID, m.CreatedBy = deref(lotID), deref(createdBy)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *MovementRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'salida' THEN -quantity ELSE quantity END), 0)::bigint
		FROM inventory_movements WHERE product_id = $1`, productID).Scan(&sum)
	if err != nil {
		return 0, wrapErr("sum movements", err)
	}
	return sum, nil
}
