package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// LotFilter filtra el listado de lotes de una empresa.
type LotFilter struct {
	Status          string
	ProductID       string
	SaleID          string
	Search          string // coincide con número de lote, código o nombre de producto
	IncludeArchived bool
	Limit           int
	Offset          int
}

// LotRepository define el puerto de persistencia para lotes.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetWithSerials devuelve el lote con sus seriales ordenados por secuencia.
	GetWithSerials(ctx context.Context, id string) (*entity.Lot, error)
	// ListAvailable devuelve lotes sin venta, no archivados y en alguno de los estados dados,
	// con sus seriales, ordenados por fecha de ingreso ascendente (sin fecha al final).
	ListAvailable(ctx context.Context, productID, companyID string, statuses []string) ([]*entity.Lot, error)
	ListBySale(ctx context.Context, saleID, companyID string) ([]*entity.Lot, error)
	List(ctx context.Context, companyID string, f LotFilter) ([]*entity.Lot, error)
	// UpdateStatus cambia el estado; al ingresar fija la fecha de ingreso y al entregar la de entrega.
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	LinkSale(ctx context.Context, id, saleID string) error
	Archive(ctx context.Context, id string) error
}
