package lot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
)

func TestBatcher(t *testing.T) {
	l := &entity.Lot{ID: "lot-1", LotNumber: "Q-20240115", ProductID: "q", Status: entity.LotStatusInInventory}
	b := lot.Batches(l, 2500, 1000)

	assert.Equal(t, 3, b.Count())

	var sizes []int
	var last *entity.Serial
	for batch, ok := b.Next(); ok; batch, ok = b.Next() {
		sizes = append(sizes, len(batch.Serials))
		last = batch.Serials[len(batch.Serials)-1]
	}
	assert.Equal(t, []int{1000, 1000, 500}, sizes)
	require.NotNil(t, last)
	assert.Equal(t, "Q-20240115-2500", last.SerialNumber)
	assert.Equal(t, 2500, last.Sequence)
	assert.Equal(t, entity.SerialStatusInInventory, last.Status)
}

func TestBatcher_Vacio(t *testing.T) {
	b := lot.Batches(&entity.Lot{LotNumber: "X"}, 0, 10)
	assert.Zero(t, b.Count())
	_, ok := b.Next()
	assert.False(t, ok)
}

func TestPlanSplit(t *testing.T) {
	serials := func(statuses ...string) []*entity.Serial {
		out := make([]*entity.Serial, len(statuses))
		for i, s := range statuses {
			out[i] = &entity.Serial{ID: string(rune('a' + i)), Status: s}
		}
		return out
	}

	p := lot.PlanSplit(serials(entity.SerialStatusInInventory, entity.SerialStatusInInventory))
	assert.Equal(t, lot.SplitNone, p.Outcome)

	p = lot.PlanSplit(serials(entity.SerialStatusSold, entity.SerialStatusSold))
	assert.Equal(t, lot.SplitFull, p.Outcome)

	p = lot.PlanSplit(serials(entity.SerialStatusSold, entity.SerialStatusPending, entity.SerialStatusSold))
	assert.Equal(t, lot.SplitPartial, p.Outcome)
	assert.Equal(t, []string{"a", "c"}, lot.SerialIDs(p.Sold))
	assert.Equal(t, []string{"b"}, lot.SerialIDs(p.Remaining))
}
