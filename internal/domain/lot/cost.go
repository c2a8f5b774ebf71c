package lot

import "github.com/shopspring/decimal"

// TotalCost calcula el costo total de un movimiento cuando se conoce el costo unitario.
// Sin costo unitario el movimiento queda pendiente de información contable (nil).
func TotalCost(unitCost *decimal.Decimal, quantity int64) *decimal.Decimal {
	if unitCost == nil {
		return nil
	}
	total := unitCost.Mul(decimal.NewFromInt(quantity))
	return &total
}

