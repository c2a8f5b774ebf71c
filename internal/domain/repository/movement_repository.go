package repository

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// MovementRepository define el puerto del kardex (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error)
	// SumByProduct devuelve Σentradas − Σsalidas del producto.
	SumByProduct(ctx context.Context, productID string) (int64, error)
}
