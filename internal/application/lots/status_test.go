package lots_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

func TestUpdateLotStatus_Errores(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	pending := f.pendingGeneralLot(t, "p", "P", 3)

	_, err := f.status.UpdateLotStatus(ctx, companyID, pending.ID, entity.LotStatusDelivered, actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.status.UpdateLotStatus(ctx, companyID, pending.ID, "perdido", actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.status.UpdateLotStatus(ctx, "otra-empresa", pending.ID, entity.LotStatusInInventory, actorID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.status.UpdateLotStatus(ctx, companyID, "no-existe", entity.LotStatusInInventory, actorID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// nada cambió
	assert.Zero(t, f.stock(t, "p"))
	assert.Equal(t, entity.LotStatusPending, f.lot(t, pending.ID).Status)
}

func TestUpdateLotStatus_LoteArchivado(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	parent, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 4, companyID, actorID)
	require.NoError(t, err)
	_, err = f.allocator.AllocateForSale(ctx, "p", 1, companyID, "s1", actorID)
	require.NoError(t, err)

	_, err = f.status.UpdateLotStatus(ctx, companyID, parent.ID, entity.LotStatusDelivered, actorID)
	assert.ErrorIs(t, err, domain.ErrLotArchived)
	assert.EqualValues(t, 4, f.stock(t, "p"))
}

func TestUpdateLotStatus_CicloCompleto(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	l := f.pendingGeneralLot(t, "p", "P", 3)

	updated, err := f.status.UpdateLotStatus(ctx, companyID, l.ID, entity.LotStatusInInventory, actorID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusInInventory, updated.Status)
	require.NotNil(t, updated.IngressDate)
	assert.EqualValues(t, 3, f.stock(t, "p"))

	_, err = f.status.UpdateLotStatus(ctx, companyID, l.ID, entity.LotStatusInInventory, actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	updated, err = f.status.UpdateLotStatus(ctx, companyID, l.ID, entity.LotStatusDelivered, actorID)
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryDate)
	assert.Zero(t, f.stock(t, "p"))

	movs, err := f.queries.Kardex(ctx, companyID, "p", 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeSalida, movs[0].Type)
	assert.Equal(t, "entrega de lote "+l.LotNumber, movs[0].Reason)
	assert.Equal(t, l.LotNumber, movs[0].ReferenceDocument)
	assert.Equal(t, entity.MovementTypeEntrada, movs[1].Type)
	assert.Equal(t, l.LotNumber, movs[1].ReferenceDocument)

	_, err = f.status.UpdateLotStatus(ctx, companyID, l.ID, entity.LotStatusInInventory, actorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ─── Kardex ──────────────────────────────────────────────────────────────────

func TestLedger_SalidaRecortada(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	var out *entity.Movement
	err := f.store.TxRunner().Run(ctx, func(tx lots.Repos) error {
		if _, err := f.ledger.Record(ctx, tx, lots.MovementInput{ProductID: "p", Type: entity.MovementTypeEntrada, Quantity: 2}); err != nil {
			return err
		}
		var err error
		out, err = f.ledger.Record(ctx, tx, lots.MovementInput{ProductID: "p", Type: entity.MovementTypeSalida, Quantity: 5})
		return err
	})
	require.NoError(t, err)

	assert.EqualValues(t, 2, out.Quantity)
	assert.EqualValues(t, 5, out.RequestedQuantity)
	assert.True(t, out.Clamped())
	assert.Zero(t, f.stock(t, "p"))

	sum, err := f.repos.Movements.SumByProduct(ctx, "p")
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestLedger_Rollback(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	err := f.store.TxRunner().Run(ctx, func(tx lots.Repos) error {
		if _, err := f.ledger.Record(ctx, tx, lots.MovementInput{ProductID: "p", Type: entity.MovementTypeEntrada, Quantity: 7}); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, f.stock(t, "p"))

	movs, err := f.queries.Kardex(ctx, companyID, "p", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestLedger_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	err := f.store.TxRunner().Run(ctx, func(tx lots.Repos) error {
		_, err := f.ledger.Record(ctx, tx, lots.MovementInput{ProductID: "p", Type: "ajuste", Quantity: 1})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
