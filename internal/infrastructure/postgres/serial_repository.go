package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.SerialRepository = (*SerialRepo)(nil)

// SerialRepo persistencia de seriales (tabla product_serials).
type SerialRepo struct {
	q Querier
}

// NewSerialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialRepository(q Querier) *SerialRepo {
	return &SerialRepo{q: q}
}

const serialColumns = `id, serial_number, sequence, lot_id, product_id, product_code, product_name, company_id,
	sale_id, status, created_by, created_at, updated_at`

func scanSerial(row pgx.Row) (*entity.Serial, error) {
	var s entity.Serial
	var saleID, createdBy *string
	err := row.Scan(&s.ID, &s.SerialNumber, &s.Sequence, &s.LotID, &s.ProductID, &s.ProductCode, &s.ProductName,
		&s.CompanyID, &saleID, &s.Status, &createdBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.SaleID, s.CreatedBy = deref(saleID), deref(createdBy)
	return &s, nil
}

// InsertBatch inserta el grupo en una sola sentencia. ON CONFLICT (serial_number) hace que la
// sentencia devuelva también las filas ya existentes, por lo que repetir un grupo es inocuo.
func (r *SerialRepo) InsertBatch(ctx context.Context, serials []*entity.Serial) ([]*entity.Serial, error) {
	if len(serials) == 0 {
		return nil, nil
	}
	n := len(serials)
	var (
		ids       = make([]string, n)
		numbers   = make([]string, n)
		sequences = make([]int32, n)
		lotIDs    = make([]string, n)
		products  = make([]string, n)
		codes     = make([]string, n)
		names     = make([]string, n)
		companies = make([]string, n)
		sales     = make([]*string, n)
		statuses  = make([]string, n)
		creators  = make([]*string, n)
	)
	for i, s := range serials {
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		ids[i], numbers[i], sequences[i] = id, s.SerialNumber, int32(s.Sequence)
		lotIDs[i], products[i], codes[i], names[i] = s.LotID, s.ProductID, s.ProductCode, s.ProductName
		companies[i], sales[i], statuses[i], creators[i] = s.CompanyID, nullable(s.SaleID), s.Status, nullable(s.CreatedBy)
	}

	rows, err := r.q.Query(ctx, `
		INSERT INTO product_serials (id, serial_number, sequence, lot_id, product_id, product_code, product_name,
			company_id, sale_id, status, created_by)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::int[], $4::uuid[], $5::uuid[], $6::text[], $7::text[],
			$8::uuid[], $9::uuid[], $10::text[], $11::uuid[])
		ON CONFLICT (serial_number) DO UPDATE SET serial_number = EXCLUDED.serial_number
		RETURNING `+serialColumns,
		ids, numbers, sequences, lotIDs, products, codes, names, companies, sales, statuses, creators)
	if err != nil {
		return nil, wrapErr("insert serial batch", err)
	}
	defer rows.Close()

	byNumber := make(map[string]*entity.Serial, n)
	for rows.Next() {
		s, err := scanSerial(rows)
		if err != nil {
			return nil, wrapErr("scan serial", err)
		}
		byNumber[s.SerialNumber] = s
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("insert serial batch", err)
	}

	out := make([]*entity.Serial, 0, n)
	for _, number := range numbers {
		if s, ok := byNumber[number]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SerialRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Serial, error) {
	if _, err := uuid.Parse(lotID); err != nil {
		return []*entity.Serial{}, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+serialColumns+` FROM product_serials WHERE lot_id = $1 ORDER BY sequence`, lotID)
	if err != nil {
		return nil, wrapErr("list serials", err)
	}
	defer rows.Close()
	out := make([]*entity.Serial, 0)
	for rows.Next() {
		s, err := scanSerial(rows)
		if err != nil {
			return nil, wrapErr("scan serial", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SerialRepo) GetBySerialNumber(ctx context.Context, serialNumber string) (*entity.Serial, error) {
	s, err := scanSerial(r.q.QueryRow(ctx, `SELECT `+serialColumns+` FROM product_serials WHERE serial_number = $1`, serialNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get serial", err)
	}
	return s, nil
}

// MarkSold es condicional: solo cambia seriales disponibles que sigan en el lote indicado y ese lote
// no esté archivado. El llamador compara RowsAffected con lo esperado.
func (r *SerialRepo) MarkSold(ctx context.Context, lotID string, ids []string, saleID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE product_serials s
		SET status = 'sold', sale_id = $3, updated_at = now()
		FROM product_lots l
		WHERE s.id = ANY($2::uuid[])
		  AND s.lot_id = $1
		  AND l.id = s.lot_id
		  AND NOT l.is_archived
		  AND s.status IN ('pending', 'in_inventory')`, lotID, ids, saleID)
	if err != nil {
		return 0, wrapErr("mark serials sold", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SerialRepo) Reassign(ctx context.Context, ids []string, lotID string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE product_serials SET lot_id = $2, updated_at = now() WHERE id = ANY($1::uuid[])`, ids, lotID)
	if err != nil {
		return wrapErr("reassign serials", err)
	}
	return nil
}

func (r *SerialRepo) UpdateStatusByLot(ctx context.Context, lotID string, from []string, status string) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE product_serials SET status = $3, updated_at = now()
		WHERE lot_id = $1 AND ($2::text[] IS NULL OR status = ANY($2::text[]))`, lotID, from, status)
	if err != nil {
		return 0, wrapErr("update serial status", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SerialRepo) CountOnHand(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM product_serials s
		JOIN product_lots l ON l.id = s.lot_id
		WHERE s.product_id = $1 AND NOT l.is_archived AND l.status = 'in_inventory'`, productID).Scan(&n)
	if err != nil {
		return 0, wrapErr("count on-hand serials", err)
	}
	return n, nil
}
