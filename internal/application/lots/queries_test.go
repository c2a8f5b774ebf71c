package lots_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

func TestValidateSerial(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	l, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 2, companyID, actorID)
	require.NoError(t, err)
	number := l.Serials[0].SerialNumber

	v, err := f.queries.ValidateSerial(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, l.ID, v.Lot.ID)
	assert.Nil(t, v.Warranty, "sin entrega no hay garantía")

	_, err = f.status.UpdateLotStatus(ctx, companyID, l.ID, entity.LotStatusDelivered, actorID)
	require.NoError(t, err)

	v, err = f.queries.ValidateSerial(ctx, "  "+number+" ")
	require.NoError(t, err)
	require.NotNil(t, v.Warranty)
	assert.True(t, v.Warranty.Active)
	assert.GreaterOrEqual(t, v.Warranty.RemainingDays, 365)
	assert.Equal(t, entity.SerialStatusDelivered, v.Serial.Status)

	_, err = f.queries.ValidateSerial(ctx, "NO-EXISTE-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.queries.ValidateSerial(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListLots_Filtros(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	f.addProduct(t, "q", "Q")
	ctx := context.Background()

	_, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 1, companyID, actorID)
	require.NoError(t, err)
	f.pendingGeneralLot(t, "q", "Q", 1)

	all, err := f.queries.ListLots(ctx, companyID, repository.LotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.queries.ListLots(ctx, companyID, repository.LotFilter{Status: entity.LotStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "q", pending[0].ProductID)

	found, err := f.queries.ListLots(ctx, companyID, repository.LotFilter{Search: "p-"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p", found[0].ProductID)

	_, err = f.queries.ListLots(ctx, companyID, repository.LotFilter{Status: "perdido"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other, err := f.queries.ListLots(ctx, "otra-empresa", repository.LotFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSerialsForLot_OtraEmpresa(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	l := f.pendingGeneralLot(t, "p", "P", 2)

	_, err := f.queries.SerialsForLot(context.Background(), "otra-empresa", l.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	serials, err := f.queries.SerialsForLot(context.Background(), companyID, l.ID)
	require.NoError(t, err)
	assert.Len(t, serials, 2)
}

func TestRegisterEntry_ConCosto(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()
	cost := decimal.RequireFromString("12500.50")

	_, err := f.orchestrator.RegisterEntry(ctx, lots.EntryInput{
		ProductID: "p", Quantity: 4, CompanyID: companyID, ActorID: actorID,
		UnitCost: &cost, ReferenceDocument: "FC-001",
	})
	require.NoError(t, err)

	movs, err := f.queries.Kardex(ctx, companyID, "p", 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	require.NotNil(t, movs[0].TotalCost)
	assert.True(t, decimal.RequireFromString("50002").Equal(*movs[0].TotalCost))
	assert.Equal(t, "FC-001", movs[0].ReferenceDocument)
	assert.Empty(t, movs[0].Notes)
}

// ─── Conciliación ────────────────────────────────────────────────────────────

func TestReconcile_Repara(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx := context.Background()

	_, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 3, companyID, actorID)
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.SetStock(ctx, "p", 9))

	found, err := f.reconcile.Run(ctx, companyID, false)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.EqualValues(t, 9, found[0].CurrentStock)
	assert.EqualValues(t, 3, found[0].LedgerStock)
	assert.EqualValues(t, 3, found[0].OnHandSerials)
	assert.False(t, found[0].Repaired)
	assert.EqualValues(t, 9, f.stock(t, "p"))

	found, err = f.reconcile.Run(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Repaired)
	assert.EqualValues(t, 3, f.stock(t, "p"))

	found, err = f.reconcile.Run(ctx, companyID, false)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStartReconcileCron_ReparaEnSegundoPlano(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p", "P")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.orchestrator.RegisterInventoryEntry(ctx, "p", 2, companyID, actorID)
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.SetStock(ctx, "p", 50))

	lots.StartReconcileCron(ctx, f.reconcile, companyID, true, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		p, err := f.repos.Products.GetByID(context.Background(), "p")
		return err == nil && p != nil && p.CurrentStock == 2
	}, 2*time.Second, 10*time.Millisecond)
}
