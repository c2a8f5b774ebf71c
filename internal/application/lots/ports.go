package lots

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// Repos agrupa los repositorios del motor de lotes. Dentro de TxRunner.Run quedan atados a la transacción.
type Repos struct {
	Products  repository.ProductRepository
	Lots      repository.LotRepository
	Serials   repository.SerialRepository
	Movements repository.MovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Repos) error) error
}

// availableStatuses son los estados de lote de los que se pueden tomar seriales para una venta.
var availableStatuses = []string{entity.LotStatusInInventory, entity.LotStatusPending}
