package lots

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// Límites de paginación de listados.
const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// QueryUseCase consultas de lotes, seriales y kardex.
type QueryUseCase struct {
	products  repository.ProductRepository
	lots      repository.LotRepository
	serials   repository.SerialRepository
	movements repository.MovementRepository
	now       func() time.Time
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(r Repos) *QueryUseCase {
	return &QueryUseCase{products: r.Products, lots: r.Lots, serials: r.Serials, movements: r.Movements, now: time.Now}
}

// LotsForSale devuelve los lotes vinculados a la venta con sus seriales, el más reciente primero.
func (uc *QueryUseCase) LotsForSale(ctx context.Context, saleID, companyID string) ([]*entity.Lot, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.lots.ListBySale(ctx, saleID, companyID)
	if err != nil {
		return nil, err
	}
	for _, l := range list {
		if l.Serials, err = uc.serials.ListByLot(ctx, l.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// SerialsForLot devuelve los seriales del lote ordenados por secuencia.
func (uc *QueryUseCase) SerialsForLot(ctx context.Context, companyID, lotID string) ([]*entity.Serial, error) {
	l, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if l.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return uc.serials.ListByLot(ctx, lotID)
}

// ListLots lista lotes de la empresa con filtros. Por defecto excluye archivados.
func (uc *QueryUseCase) ListLots(ctx context.Context, companyID string, f repository.LotFilter) ([]*entity.Lot, error) {
	if f.Status != "" && !lot.IsValidStatus(f.Status) {
		return nil, domain.ErrInvalidInput
	}
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	f.Search = strings.TrimSpace(f.Search)
	return uc.lots.List(ctx, companyID, f)
}

// Kardex lista los movimientos de un producto, del más reciente al más antiguo.
func (uc *QueryUseCase) Kardex(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.Movement, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	limit, offset = normalizePage(limit, offset)
	return uc.movements.ListByProduct(ctx, productID, limit, offset)
}

// SerialValidation resultado de validar un serial para garantía. Warranty es nil si no fue entregado.
type SerialValidation struct {
	Serial   *entity.Serial
	Lot      *entity.Lot
	Warranty *lot.Warranty
}

// ValidateSerial busca un serial por número y, si su lote fue entregado, calcula la garantía.
// Consulta pública: no filtra por empresa.
func (uc *QueryUseCase) ValidateSerial(ctx context.Context, serialNumber string) (*SerialValidation, error) {
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.serials.GetBySerialNumber(ctx, serialNumber)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	l, err := uc.lots.GetByID(ctx, s.LotID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	v := &SerialValidation{Serial: s, Lot: l}
	if l.Status == entity.LotStatusDelivered && l.DeliveryDate != nil {
		w := lot.WarrantyAt(*l.DeliveryDate, uc.now())
		v.Warranty = &w
	}
	return v, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
