package lots_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

func TestAllocate_SoloPlanifica(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	l, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 4, companyID, actorID)
	require.NoError(t, err)

	alloc, err := f.allocator.Allocate(ctx, "p", 6, companyID)
	require.NoError(t, err)
	require.Len(t, alloc.AllocatedLots, 1)
	assert.Equal(t, l.ID, alloc.AllocatedLots[0].LotID)
	assert.Equal(t, 4, alloc.Allocated())
	assert.Equal(t, 2, alloc.RemainingQty)

	for _, s := range f.lot(t, l.ID).Serials {
		assert.Equal(t, entity.SerialStatusInInventory, s.Status)
	}

	_, err = f.allocator.Allocate(ctx, "p", 0, companyID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCommitAllocation_PlanObsoleto(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	l, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 5, companyID, actorID)
	require.NoError(t, err)

	stale, err := f.allocator.Allocate(ctx, "p", 2, companyID)
	require.NoError(t, err)

	// otra venta toma los mismos seriales primero y divide el lote
	_, err = f.allocator.AllocateForSale(ctx, "p", 3, companyID, "s-otra", actorID)
	require.NoError(t, err)

	err = f.allocator.CommitAllocation(ctx, stale, "s-tarde", companyID, actorID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllocationConflict)
	assert.Equal(t, domain.StageCommit, domain.StageOf(err))

	saleLots, err := f.queries.LotsForSale(ctx, "s-tarde", companyID)
	require.NoError(t, err)
	assert.Empty(t, saleLots)
	assert.True(t, f.lot(t, l.ID).IsArchived)
}

func TestCommitAllocation_Vigente(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	_, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 5, companyID, actorID)
	require.NoError(t, err)

	plan, err := f.allocator.Allocate(ctx, "p", 5, companyID)
	require.NoError(t, err)
	require.NoError(t, f.allocator.CommitAllocation(ctx, plan, "s1", companyID, actorID))

	saleLots, err := f.queries.LotsForSale(ctx, "s1", companyID)
	require.NoError(t, err)
	require.Len(t, saleLots, 1)
	assert.Len(t, saleLots[0].Serials, 5)
}

// Un lote pendiente sin venta también se puede asignar: S2 entra a bodega con su entrada de kardex.
func TestAllocateForSale_PadrePendiente(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	parent := f.pendingGeneralLot(t, "p", "P", 10)
	assert.Zero(t, f.stock(t, "p"))

	alloc, err := f.allocator.AllocateForSale(ctx, "p", 4, companyID, "s1", actorID)
	require.NoError(t, err)
	assert.Equal(t, 4, alloc.Allocated())

	saleLots, err := f.queries.LotsForSale(ctx, "s1", companyID)
	require.NoError(t, err)
	require.Len(t, saleLots, 1)
	sold := saleLots[0]
	assert.Equal(t, entity.LotStatusPending, sold.Status)
	assert.Equal(t, 4, sold.Quantity)

	available, err := f.allocator.Allocate(ctx, "p", 100, companyID)
	require.NoError(t, err)
	require.Len(t, available.AllocatedLots, 1)
	remainder := f.lot(t, available.AllocatedLots[0].LotID)
	assert.Equal(t, parent.LotNumber+"S2", remainder.LotNumber)
	assert.Equal(t, entity.LotStatusInInventory, remainder.Status)
	for _, s := range remainder.Serials {
		assert.Equal(t, entity.SerialStatusInInventory, s.Status)
	}
	assert.EqualValues(t, 6, f.stock(t, "p"))

	movs, err := f.queries.Kardex(ctx, companyID, "p", 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, remainder.ID, movs[0].LotID)
	assert.Equal(t, remainder.LotNumber, movs[0].ReferenceDocument)

	// S1 ingresa después: los seriales vendidos conservan su estado
	_, err = f.status.UpdateLotStatus(ctx, companyID, sold.ID, entity.LotStatusInInventory, actorID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, f.stock(t, "p"))
	for _, s := range f.lot(t, sold.ID).Serials {
		assert.Equal(t, entity.SerialStatusSold, s.Status)
	}

	onHand, err := f.repos.Serials.CountOnHand(ctx, "p")
	require.NoError(t, err)
	assert.EqualValues(t, 10, onHand)
}

// Asignaciones concurrentes del mismo producto nunca venden dos veces un serial.
func TestAllocateForSale_Concurrente(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	_, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 10, companyID, actorID)
	require.NoError(t, err)

	const sales = 5
	var wg sync.WaitGroup
	allocated := make([]int, sales)
	errs := make([]error, sales)
	for i := 0; i < sales; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := f.allocator.AllocateForSale(ctx, "p", 3, companyID, fmt.Sprintf("s%d", i), actorID)
			errs[i] = err
			if err == nil {
				allocated[i] = a.Allocated()
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < sales; i++ {
		require.NoError(t, errs[i])
		total += allocated[i]
	}
	assert.Equal(t, 10, total)

	seen := map[string]string{}
	for i := 0; i < sales; i++ {
		saleID := fmt.Sprintf("s%d", i)
		saleLots, err := f.queries.LotsForSale(ctx, saleID, companyID)
		require.NoError(t, err)
		for _, l := range saleLots {
			for _, s := range l.Serials {
				prev, dup := seen[s.SerialNumber]
				assert.False(t, dup, "serial %s asignado a %s y %s", s.SerialNumber, prev, saleID)
				seen[s.SerialNumber] = saleID
			}
		}
	}
	assert.Len(t, seen, 10)
}
