package entity

import "time"

// Estados de un serial.
const (
	SerialStatusPending     = "pending"
	SerialStatusInInventory = "in_inventory"
	SerialStatusSold        = "sold"
	SerialStatusDelivered   = "delivered"
)

// Serial es una unidad física individual. SerialNumber es único en todo el sistema
// y no cambia aunque el serial se reasigne a otro lote tras una división.
type Serial struct {
	ID           string
	SerialNumber string
	Sequence     int
	LotID        string
	ProductID    string
	ProductCode  string
	ProductName  string
	CompanyID    string
	SaleID       string
	Status       string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
