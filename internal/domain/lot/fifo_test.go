package lot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
)

func dayPtr(d int) *time.Time {
	t := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func makeLot(id string, ingress *time.Time, status string, n int) *entity.Lot {
	l := &entity.Lot{ID: id, LotNumber: "L" + id, Status: status, IngressDate: ingress, Quantity: n}
	for i := 1; i <= n; i++ {
		l.Serials = append(l.Serials, &entity.Serial{
			ID:       id + "-" + lot.SerialNumber("s", i),
			Sequence: i,
			LotID:    id,
			Status:   lot.SerialStatusFor(status),
		})
	}
	return l
}

func TestAllocateFIFO_OrdenPorIngreso(t *testing.T) {
	lots := []*entity.Lot{
		makeLot("sin-fecha", nil, entity.LotStatusPending, 5),
		makeLot("nuevo", dayPtr(10), entity.LotStatusInInventory, 2),
		makeLot("viejo", dayPtr(1), entity.LotStatusInInventory, 2),
	}

	a := lot.AllocateFIFO("p1", lots, 5)

	require.Len(t, a.AllocatedLots, 3)
	assert.Equal(t, "viejo", a.AllocatedLots[0].LotID)
	assert.Equal(t, "nuevo", a.AllocatedLots[1].LotID)
	assert.Equal(t, "sin-fecha", a.AllocatedLots[2].LotID)
	assert.Equal(t, 1, a.AllocatedLots[2].Quantity)
	assert.Equal(t, 5, a.Allocated())
	assert.Zero(t, a.RemainingQty)
	// la entrada no se reordena
	assert.Equal(t, "sin-fecha", lots[0].ID)
}

func TestAllocateFIFO_Remanente(t *testing.T) {
	lots := []*entity.Lot{makeLot("a", dayPtr(1), entity.LotStatusInInventory, 3)}

	a := lot.AllocateFIFO("p1", lots, 10)

	assert.Equal(t, 3, a.Allocated())
	assert.Equal(t, 7, a.RemainingQty)
	assert.Len(t, a.SerialIDs(), 3)
}

func TestAllocateFIFO_IgnoraNoDisponibles(t *testing.T) {
	archived := makeLot("arch", dayPtr(1), entity.LotStatusInInventory, 3)
	archived.IsArchived = true
	owned := makeLot("venta", dayPtr(2), entity.LotStatusInInventory, 3)
	owned.SaleID = "otra-venta"
	partial := makeLot("parcial", dayPtr(3), entity.LotStatusInInventory, 3)
	partial.Serials[0].Status = entity.SerialStatusSold

	a := lot.AllocateFIFO("p1", []*entity.Lot{archived, owned, partial}, 3)

	require.Len(t, a.AllocatedLots, 1)
	assert.Equal(t, "parcial", a.AllocatedLots[0].LotID)
	assert.Equal(t, 2, a.AllocatedLots[0].Quantity)
	assert.Equal(t, 2, a.AllocatedLots[0].Serials[0].Sequence)
	assert.Equal(t, 1, a.RemainingQty)
}

func TestAllocateFIFO_CantidadCero(t *testing.T) {
	a := lot.AllocateFIFO("p1", []*entity.Lot{makeLot("a", dayPtr(1), entity.LotStatusInInventory, 3)}, 0)
	assert.Empty(t, a.AllocatedLots)
	assert.Zero(t, a.RemainingQty)
}

// ─── Máquina de estados ──────────────────────────────────────────────────────

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		wantErr error
	}{
		{entity.LotStatusPending, entity.LotStatusInInventory, nil},
		{entity.LotStatusInInventory, entity.LotStatusDelivered, nil},
		{entity.LotStatusPending, entity.LotStatusDelivered, domain.ErrInvalidTransition},
		{entity.LotStatusInInventory, entity.LotStatusPending, domain.ErrInvalidTransition},
		{entity.LotStatusDelivered, entity.LotStatusInInventory, domain.ErrInvalidTransition},
		{entity.LotStatusInInventory, entity.LotStatusInInventory, domain.ErrInvalidTransition},
		{entity.LotStatusPending, "perdido", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			err := lot.CanTransition(&entity.Lot{Status: tt.from}, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCanTransition_Archivado(t *testing.T) {
	err := lot.CanTransition(&entity.Lot{Status: entity.LotStatusPending, IsArchived: true}, entity.LotStatusInInventory)
	assert.ErrorIs(t, err, domain.ErrLotArchived)
}

func TestSerialCascade(t *testing.T) {
	from, to := lot.SerialCascade(entity.LotStatusInInventory)
	assert.Equal(t, []string{entity.SerialStatusPending}, from)
	assert.Equal(t, entity.SerialStatusInInventory, to)

	from, to = lot.SerialCascade(entity.LotStatusDelivered)
	assert.Nil(t, from)
	assert.Equal(t, entity.SerialStatusDelivered, to)
}
