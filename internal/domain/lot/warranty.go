package lot

import (
	"math"
	"time"
)

// WarrantyMonths es la duración de la garantía contada desde la entrega.
const WarrantyMonths = 12

// Warranty es el estado de garantía de un serial entregado.
type Warranty struct {
	ExpiresAt       time.Time
	Active          bool
	RemainingDays   int
	RemainingMonths int
}

// WarrantyAt calcula la garantía a la fecha `now` para una entrega en `deliveredAt`.
// Los días restantes se redondean hacia arriba; los meses son días/30.
func WarrantyAt(deliveredAt, now time.Time) Warranty {
	expires := deliveredAt.AddDate(0, WarrantyMonths, 0)
	w := Warranty{ExpiresAt: expires}
	if !now.Before(expires) {
		return w
	}
	w.Active = true
	w.RemainingDays = int(math.Ceil(expires.Sub(now).Hours() / 24))
	w.RemainingMonths = w.RemainingDays / 30
	return w
}
