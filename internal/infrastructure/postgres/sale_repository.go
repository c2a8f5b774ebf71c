package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo lee las líneas de venta (tabla sale_items, administrada por el módulo de ventas).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func (r *SaleRepo) ListItems(ctx context.Context, saleID, companyID string) ([]entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT si.id, si.sale_id, si.company_id, si.product_id, p.code, p.name, si.quantity
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id::text = $1 AND ($2::text = '' OR si.company_id::text = $2)
		ORDER BY si.created_at, si.id`, saleID, companyID)
	if err != nil {
		return nil, wrapErr("list sale items", err)
	}
	defer rows.Close()

	var out []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.CompanyID, &it.ProductID, &it.ProductCode, &it.ProductName, &it.Quantity); err != nil {
			return nil, wrapErr("scan sale item", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

var _ repository.LotNumberSequence = (*LotNumberSequence)(nil)

// LotNumberSequence contador de números de lote por (código, fecha) en la tabla lot_number_sequences.
// El upsert es atómico, así que procesos concurrentes nunca reciben el mismo número.
type LotNumberSequence struct {
	q Querier
}

// NewLotNumberSequence construye el contador sobre el pool (fuera de transacciones de negocio).
func NewLotNumberSequence(q Querier) *LotNumberSequence {
	return &LotNumberSequence{q: q}
}

func (s *LotNumberSequence) NextLotNumber(ctx context.Context, productCode string, date time.Time) (string, error) {
	var n int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO lot_number_sequences (product_code, date_key, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (product_code, date_key)
		DO UPDATE SET last_value = lot_number_sequences.last_value + 1
		RETURNING last_value`, lot.NormalizeProductCode(productCode), lot.DateKey(date)).Scan(&n)
	if err != nil {
		return "", wrapErr("next lot number", err)
	}
	return lot.FormatLotNumber(productCode, date, n), nil
}
