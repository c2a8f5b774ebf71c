package repository

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	// Serializa asignaciones, transiciones y movimientos del mismo producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// AdjustStock suma delta al contador y devuelve el nuevo valor.
	AdjustStock(ctx context.Context, id string, delta int64) (int64, error)
	SetStock(ctx context.Context, id string, stock int64) error
	// ListByCompany lista productos de una empresa; companyID vacío lista todos.
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Product, error)
}
