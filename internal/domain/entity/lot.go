package entity

import "time"

// Estados del ciclo de vida de un lote.
const (
	LotStatusPending     = "pending"      // generado, aún no ingresa físicamente
	LotStatusInInventory = "in_inventory" // en bodega
	LotStatusDelivered   = "delivered"    // entregado al cliente (terminal)
)

// Lot agrupa las unidades serializadas de un producto. SaleID vacío significa inventario general.
// Los lotes archivados fueron reemplazados por sus hijos S1/S2 y no participan en asignaciones.
type Lot struct {
	ID            string
	LotNumber     string
	ProductID     string
	ProductCode   string
	ProductName   string
	CompanyID     string
	SaleID        string
	ParentLotID   string
	Quantity      int
	Status        string
	GeneratedDate time.Time
	IngressDate   *time.Time
	DeliveryDate  *time.Time
	IsArchived    bool
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Serials       []*Serial
}

// IsGeneral indica si el lote pertenece al inventario general (sin venta asociada).
func (l *Lot) IsGeneral() bool {
	return l.SaleID == ""
}
