package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// SaleRepository lee las líneas de venta que originan lotes.
type SaleRepository interface {
	ListItems(ctx context.Context, saleID, companyID string) ([]entity.SaleItem, error)
}

// LotNumberSequence emite números de lote únicos por (producto, fecha), incluso entre procesos.
type LotNumberSequence interface {
	NextLotNumber(ctx context.Context, productCode string, date time.Time) (string, error)
}
