package lot

import "github.com/jhoicas/Inventario-lotes/internal/domain/entity"

// SplitOutcome clasifica un lote después de marcar seriales como vendidos.
type SplitOutcome int

const (
	// SplitNone: ningún serial vendido, el lote no cambia.
	SplitNone SplitOutcome = iota
	// SplitFull: todos los seriales vendidos, el lote se vincula a la venta.
	SplitFull
	// SplitPartial: el lote se divide en S1 (vendido) y S2 (remanente).
	SplitPartial
)

// SplitPlan separa los seriales de un lote en vendidos y remanentes.
type SplitPlan struct {
	Outcome   SplitOutcome
	Sold      []*entity.Serial
	Remaining []*entity.Serial
}

// PlanSplit decide el destino de un lote a partir del estado actual de sus seriales.
func PlanSplit(serials []*entity.Serial) SplitPlan {
	var p SplitPlan
	for _, s := range serials {
		if s.Status == entity.SerialStatusSold {
			p.Sold = append(p.Sold, s)
		} else {
			p.Remaining = append(p.Remaining, s)
		}
	}
	switch {
	case len(p.Sold) == 0:
		p.Outcome = SplitNone
	case len(p.Remaining) == 0:
		p.Outcome = SplitFull
	default:
		p.Outcome = SplitPartial
	}
	return p
}

// SerialIDs devuelve los IDs de una lista de seriales.
func SerialIDs(serials []*entity.Serial) []string {
	ids := make([]string, len(serials))
	for i, s := range serials {
		ids[i] = s.ID
	}
	return ids
}
