package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex de lotes.
const (
	MovementTypeEntrada = "entrada"
	MovementTypeSalida  = "salida"
)

// Movement es un registro inmutable del kardex. Quantity es la cantidad efectiva aplicada al stock;
// RequestedQuantity conserva la cantidad solicitada cuando una salida fue recortada al stock disponible.
type Movement struct {
	ID                string
	ProductID         string
	CompanyID         string
	LotID             string
	Type              string
	Quantity          int64
	RequestedQuantity int64
	Reason            string
	Notes             string
	ReferenceDocument string
	UnitCost          *decimal.Decimal // pendiente de completar por contabilidad
	TotalCost         *decimal.Decimal
	MovementDate      time.Time
	CreatedBy         string
	CreatedAt         time.Time
}

// Clamped indica si la salida se aplicó por una cantidad menor a la solicitada.
func (m *Movement) Clamped() bool {
	return m.RequestedQuantity > m.Quantity
}
