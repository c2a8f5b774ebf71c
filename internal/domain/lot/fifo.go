package lot

import (
	"sort"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// LotAllocation es la porción tomada de un lote concreto.
type LotAllocation struct {
	LotID     string
	LotNumber string
	Quantity  int
	Serials   []*entity.Serial
}

// Allocation es el resultado de asignar unidades existentes a una demanda.
// RemainingQty es la parte no cubierta, que debe materializarse como lote nuevo.
type Allocation struct {
	ProductID     string
	Requested     int
	AllocatedLots []LotAllocation
	RemainingQty  int
}

// Allocated devuelve la cantidad total cubierta por lotes existentes.
func (a *Allocation) Allocated() int {
	if a == nil {
		return 0
	}
	n := 0
	for _, la := range a.AllocatedLots {
		n += la.Quantity
	}
	return n
}

// SerialIDs devuelve los IDs de todos los seriales asignados.
func (a *Allocation) SerialIDs() []string {
	if a == nil {
		return nil
	}
	ids := make([]string, 0, a.Allocated())
	for _, la := range a.AllocatedLots {
		for _, s := range la.Serials {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// SortFIFO ordena los lotes por fecha de ingreso ascendente; los que no tienen fecha van al final
// conservando su orden relativo.
func SortFIFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i].IngressDate, lots[j].IngressDate
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})
}

// AvailableSerials devuelve los seriales del lote que pueden venderse, en orden de secuencia.
func AvailableSerials(l *entity.Lot) []*entity.Serial {
	out := make([]*entity.Serial, 0, len(l.Serials))
	for _, s := range l.Serials {
		if s.Status == entity.SerialStatusInInventory || s.Status == entity.SerialStatusPending {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// AllocateFIFO recorre los lotes en orden FIFO tomando seriales disponibles hasta cubrir requested.
// No modifica los lotes; solo planifica.
func AllocateFIFO(productID string, lots []*entity.Lot, requested int) *Allocation {
	alloc := &Allocation{ProductID: productID, Requested: requested, RemainingQty: requested}
	if requested <= 0 {
		alloc.RemainingQty = 0
		return alloc
	}
	ordered := make([]*entity.Lot, len(lots))
	copy(ordered, lots)
	SortFIFO(ordered)

	for _, l := range ordered {
		if alloc.RemainingQty == 0 {
			break
		}
		if l.IsArchived || !l.IsGeneral() {
			continue
		}
		avail := AvailableSerials(l)
		if len(avail) == 0 {
			continue
		}
		take := min(len(avail), alloc.RemainingQty)
		alloc.AllocatedLots = append(alloc.AllocatedLots, LotAllocation{
			LotID:     l.ID,
			LotNumber: l.LotNumber,
			Quantity:  take,
			Serials:   avail[:take],
		})
		alloc.RemainingQty -= take
	}
	return alloc
}
