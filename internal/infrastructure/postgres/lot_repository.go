package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo persistencia de lotes (tabla product_lots).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, lot_number, product_id, product_code, product_name, company_id, sale_id, parent_lot_id,
	quantity, status, generated_date, ingress_date, delivery_date, is_archived, created_by, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	var saleID, parentID, createdBy *string
	err := row.Scan(
		&l.ID, &l.LotNumber, &l.ProductID, &l.ProductCode, &l.ProductName, &l.CompanyID, &saleID, &parentID,
		&l.Quantity, &l.Status, &l.GeneratedDate, &l.IngressDate, &l.DeliveryDate, &l.IsArchived, &createdBy,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.SaleID, l.ParentLotID, l.CreatedBy = deref(saleID), deref(parentID), deref(createdBy)
	return &l, nil
}

func collectLots(rows pgx.Rows) ([]*entity.Lot, error) {
	defer rows.Close()
	out := make([]*entity.Lot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, wrapErr("scan lot", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO product_lots (id, lot_number, product_id, product_code, product_name, company_id, sale_id,
			parent_lot_id, quantity, status, generated_date, ingress_date, delivery_date, is_archived, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		l.ID, l.LotNumber, l.ProductID, l.ProductCode, l.ProductName, l.CompanyID, nullable(l.SaleID),
		nullable(l.ParentLotID), l.Quantity, l.Status, l.GeneratedDate, l.IngressDate, l.DeliveryDate,
		l.IsArchived, nullable(l.CreatedBy),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert lot", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM product_lots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get lot", err)
	}
	return l, nil
}

func (r *LotRepo) GetWithSerials(ctx context.Context, id string) (*entity.Lot, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil || l == nil {
		return l, err
	}
	if err := attachSerials(ctx, r.q, []*entity.Lot{l}); err != nil {
		return nil, err
	}
	return l, nil
}

// ListAvailable: FIFO por fecha de ingreso, los lotes sin fecha al final.
func (r *LotRepo) ListAvailable(ctx context.Context, productID, companyID string, statuses []string) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+lotColumns+` FROM product_lots
		WHERE product_id = $1
		  AND ($2::text = '' OR company_id::text = $2)
		  AND sale_id IS NULL
		  AND NOT is_archived
		  AND status = ANY($3)
		ORDER BY ingress_date ASC NULLS LAST, created_at ASC`,
		productID, companyID, statuses)
	if err != nil {
		return nil, wrapErr("list available lots", err)
	}
	out, err := collectLots(rows)
	if err != nil {
		return nil, err
	}
	if err := attachSerials(ctx, r.q, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LotRepo) ListBySale(ctx context.Context, saleID, companyID string) ([]*entity.Lot, error) {
	if _, err := uuid.Parse(saleID); err != nil {
		return []*entity.Lot{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+lotColumns+` FROM product_lots
		WHERE sale_id = $1 AND ($2::text = '' OR company_id::text = $2)
		ORDER BY created_at DESC, lot_number DESC`, saleID, companyID)
	if err != nil {
		return nil, wrapErr("list lots by sale", err)
	}
	return collectLots(rows)
}

func (r *LotRepo) List(ctx context.Context, companyID string, f repository.LotFilter) ([]*entity.Lot, error) {
	where := []string{"company_id::text = $1"}
	args := []any{companyID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if !f.IncludeArchived {
		where = append(where, "NOT is_archived")
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.ProductID != "" {
		add("product_id::text = $%d", f.ProductID)
	}
	if f.SaleID != "" {
		add("sale_id::text = $%d", f.SaleID)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(lot_number ILIKE $%d OR product_code ILIKE $%d OR product_name ILIKE $%d)", n, n, n))
	}
	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + lotColumns + ` FROM product_lots WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list lots", err)
	}
	return collectLots(rows)
}

func (r *LotRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	return r.exec(ctx, "update lot status", `
		UPDATE product_lots SET
			status = $2::text,
			ingress_date = CASE WHEN $2::text = 'in_inventory' THEN $3::timestamptz ELSE ingress_date END,
			delivery_date = CASE WHEN $2::text = 'delivered' THEN $3::timestamptz ELSE delivery_date END,
			updated_at = now()
		WHERE id = $1`, id, status, at)
}

func (r *LotRepo) LinkSale(ctx context.Context, id, saleID string) error {
	return r.exec(ctx, "link lot to sale", `UPDATE product_lots SET sale_id = $2, updated_at = now() WHERE id = $1`, id, saleID)
}

func (r *LotRepo) Archive(ctx context.Context, id string) error {
	return r.exec(ctx, "archive lot", `UPDATE product_lots SET is_archived = true, updated_at = now() WHERE id = $1`, id)
}

func (r *LotRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// attachSerials carga en una sola consulta los seriales de varios lotes.
func attachSerials(ctx context.Context, q Querier, list []*entity.Lot) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*entity.Lot, len(list))
	for i, l := range list {
		ids[i] = l.ID
		byID[l.ID] = l
		l.Serials = make([]*entity.Serial, 0, l.Quantity)
	}
	rows, err := q.Query(ctx, `
		SELECT `+serialColumns+` FROM product_serials
		WHERE lot_id = ANY($1::uuid[])
		ORDER BY lot_id, sequence`, ids)
	if err != nil {
		return wrapErr("list lot serials", err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSerial(rows)
		if err != nil {
			return wrapErr("scan serial", err)
		}
		if l, ok := byID[s.LotID]; ok {
			l.Serials = append(l.Serials, s)
		}
	}
	return rows.Err()
}
