package repository

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// SerialRepository define el puerto de persistencia para seriales.
type SerialRepository interface {
	// InsertBatch inserta los seriales de forma idempotente por número de serial y devuelve
	// todas las filas (insertadas o ya existentes) en el orden de entrada.
	InsertBatch(ctx context.Context, serials []*entity.Serial) ([]*entity.Serial, error)
	ListByLot(ctx context.Context, lotID string) ([]*entity.Serial, error)
	GetBySerialNumber(ctx context.Context, serialNumber string) (*entity.Serial, error)
	// MarkSold marca como vendidos los seriales que sigan en lotID (no archivado) y disponibles
	// (pending o in_inventory), y devuelve cuántos cambió. Un valor menor a len(ids) indica
	// que otra operación los tomó o reubicó.
	MarkSold(ctx context.Context, lotID string, ids []string, saleID string) (int64, error)
	// Reassign mueve seriales a otro lote conservando número y secuencia.
	Reassign(ctx context.Context, ids []string, lotID string) error
	// UpdateStatusByLot cambia el estado de los seriales del lote cuyo estado esté en from (nil = todos).
	UpdateStatusByLot(ctx context.Context, lotID string, from []string, status string) (int64, error)
	// CountOnHand cuenta los seriales del producto en lotes no archivados con estado in_inventory
	// (incluye vendidos aún no entregados).
	CountOnHand(ctx context.Context, productID string) (int64, error)
}
