package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
)

// InventoryEntryRequest body para POST /api/inventory/entries.
type InventoryEntryRequest struct {
	ProductID         string           `json:"product_id" validate:"required"`
	Quantity          int              `json:"quantity" validate:"required,min=1"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceDocument string           `json:"reference_document,omitempty" validate:"max=100"`
}

// AllocationPreviewRequest body para POST /api/lots/allocations (solo planifica, no confirma).
type AllocationPreviewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// UpdateLotStatusRequest body para PATCH /api/lots/:id/status.
type UpdateLotStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_inventory delivered"`
}

// ListLotsRequest filtros de GET /api/lots.
type ListLotsRequest struct {
	Limit           int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset          int    `query:"offset" validate:"omitempty,min=0"`
	Status          string `query:"status" validate:"omitempty,oneof=pending in_inventory delivered"`
	ProductID       string `query:"product_id"`
	SaleID          string `query:"sale_id"`
	Search          string `query:"search" validate:"max=100"`
	IncludeArchived bool   `query:"include_archived"`
}

// ReconcileRequest body para POST /api/inventory/reconcile.
type ReconcileRequest struct {
	Repair bool `json:"repair"`
}

// SerialDTO unidad serializada.
type SerialDTO struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serial_number"`
	Sequence     int       `json:"sequence"`
	LotID        string    `json:"lot_id"`
	ProductID    string    `json:"product_id"`
	ProductCode  string    `json:"product_code"`
	SaleID       string    `json:"sale_id,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// LotDTO lote con sus seriales (si fueron cargados).
type LotDTO struct {
	ID            string      `json:"id"`
	LotNumber     string      `json:"lot_number"`
	ProductID     string      `json:"product_id"`
	ProductCode   string      `json:"product_code"`
	ProductName   string      `json:"product_name"`
	SaleID        string      `json:"sale_id,omitempty"`
	ParentLotID   string      `json:"parent_lot_id,omitempty"`
	Quantity      int         `json:"quantity"`
	Status        string      `json:"status"`
	GeneratedDate time.Time   `json:"generated_date"`
	IngressDate   *time.Time  `json:"ingress_date,omitempty"`
	DeliveryDate  *time.Time  `json:"delivery_date,omitempty"`
	IsArchived    bool        `json:"is_archived"`
	Serials       []SerialDTO `json:"serials,omitempty"`
}

// LotAllocationDTO porción de la demanda cubierta por un lote existente.
type LotAllocationDTO struct {
	LotID         string   `json:"lot_id"`
	LotNumber     string   `json:"lot_number"`
	Quantity      int      `json:"quantity"`
	SerialNumbers []string `json:"serial_numbers"`
}

// AllocationDTO plan FIFO para una demanda.
type AllocationDTO struct {
	ProductID     string             `json:"product_id"`
	Requested     int                `json:"requested"`
	Allocated     int                `json:"allocated"`
	RemainingQty  int                `json:"remaining_qty"`
	AllocatedLots []LotAllocationDTO `json:"allocated_lots"`
}

// MovementDTO registro del kardex.
type MovementDTO struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	LotID             string           `json:"lot_id,omitempty"`
	Type              string           `json:"type"`
	Quantity          int64            `json:"quantity"`
	RequestedQuantity int64            `json:"requested_quantity"`
	Clamped           bool             `json:"clamped"`
	Reason            string           `json:"reason"`
	Notes             string           `json:"notes,omitempty"`
	ReferenceDocument string           `json:"reference_document,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost         *decimal.Decimal `json:"total_cost,omitempty"`
	MovementDate      time.Time        `json:"movement_date"`
	CreatedBy         string           `json:"created_by,omitempty"`
}

// WarrantyDTO estado de la garantía de un serial entregado.
type WarrantyDTO struct {
	ExpiresAt       time.Time `json:"expires_at"`
	Active          bool      `json:"active"`
	RemainingDays   int       `json:"remaining_days"`
	RemainingMonths int       `json:"remaining_months"`
}

// SerialValidationDTO respuesta pública de validación de un serial.
type SerialValidationDTO struct {
	SerialNumber string       `json:"serial_number"`
	Status       string       `json:"status"`
	ProductCode  string       `json:"product_code"`
	ProductName  string       `json:"product_name"`
	LotNumber    string       `json:"lot_number"`
	LotStatus    string       `json:"lot_status"`
	DeliveryDate *time.Time   `json:"delivery_date,omitempty"`
	Warranty     *WarrantyDTO `json:"warranty,omitempty"`
}

// StockDiscrepancyDTO diferencia detectada por la conciliación.
type StockDiscrepancyDTO struct {
	ProductID     string `json:"product_id"`
	ProductCode   string `json:"product_code"`
	CurrentStock  int64  `json:"current_stock"`
	LedgerStock   int64  `json:"ledger_stock"`
	OnHandSerials int64  `json:"on_hand_serials"`
	Repaired      bool   `json:"repaired"`
}

// FromSerial convierte la entidad.
func FromSerial(s *entity.Serial) SerialDTO {
	return SerialDTO{
		ID:           s.ID,
		SerialNumber: s.SerialNumber,
		Sequence:     s.Sequence,
		LotID:        s.LotID,
		ProductID:    s.ProductID,
		ProductCode:  s.ProductCode,
		SaleID:       s.SaleID,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
	}
}

// FromSerials convierte una lista de seriales.
func FromSerials(list []*entity.Serial) []SerialDTO {
	out := make([]SerialDTO, 0, len(list))
	for _, s := range list {
		out = append(out, FromSerial(s))
	}
	return out
}

// FromLot convierte el lote con los seriales que traiga cargados.
func FromLot(l *entity.Lot) LotDTO {
	out := LotDTO{
		ID:            l.ID,
		LotNumber:     l.LotNumber,
		ProductID:     l.ProductID,
		ProductCode:   l.ProductCode,
		ProductName:   l.ProductName,
		SaleID:        l.SaleID,
		ParentLotID:   l.ParentLotID,
		Quantity:      l.Quantity,
		Status:        l.Status,
		GeneratedDate: l.GeneratedDate,
		IngressDate:   l.IngressDate,
		DeliveryDate:  l.DeliveryDate,
		IsArchived:    l.IsArchived,
	}
	if len(l.Serials) > 0 {
		out.Serials = FromSerials(l.Serials)
	}
	return out
}

// FromLots convierte una lista de lotes.
func FromLots(list []*entity.Lot) []LotDTO {
	out := make([]LotDTO, 0, len(list))
	for _, l := range list {
		out = append(out, FromLot(l))
	}
	return out
}

// FromAllocation convierte el plan de asignación.
func FromAllocation(a *lot.Allocation) AllocationDTO {
	out := AllocationDTO{
		ProductID:     a.ProductID,
		Requested:     a.Requested,
		Allocated:     a.Allocated(),
		RemainingQty:  a.RemainingQty,
		AllocatedLots: make([]LotAllocationDTO, 0, len(a.AllocatedLots)),
	}
	for _, la := range a.AllocatedLots {
		numbers := make([]string, 0, len(la.Serials))
		for _, s := range la.Serials {
			numbers = append(numbers, s.SerialNumber)
		}
		out.AllocatedLots = append(out.AllocatedLots, LotAllocationDTO{
			LotID: la.LotID, LotNumber: la.LotNumber, Quantity: la.Quantity, SerialNumbers: numbers,
		})
	}
	return out
}

// FromMovements convierte registros del kardex.
func FromMovements(list []*entity.Movement) []MovementDTO {
	out := make([]MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, MovementDTO{
			ID:                m.ID,
			ProductID:         m.ProductID,
			LotID:             m.LotID,
			Type:              m.Type,
			Quantity:          m.Quantity,
			RequestedQuantity: m.RequestedQuantity,
			Clamped:           m.Clamped(),
			Reason:            m.Reason,
			Notes:             m.Notes,
			ReferenceDocument: m.ReferenceDocument,
			UnitCost:          m.UnitCost,
			TotalCost:         m.TotalCost,
			MovementDate:      m.MovementDate,
			CreatedBy:         m.CreatedBy,
		})
	}
	return out
}

// FromSerialValidation arma la respuesta pública; no expone ids internos.
func FromSerialValidation(v *lots.SerialValidation) SerialValidationDTO {
	out := SerialValidationDTO{
		SerialNumber: v.Serial.SerialNumber,
		Status:       v.Serial.Status,
		ProductCode:  v.Serial.ProductCode,
		ProductName:  v.Serial.ProductName,
		LotNumber:    v.Lot.LotNumber,
		LotStatus:    v.Lot.Status,
		DeliveryDate: v.Lot.DeliveryDate,
	}
	if v.Warranty != nil {
		out.Warranty = &WarrantyDTO{
			ExpiresAt:       v.Warranty.ExpiresAt,
			Active:          v.Warranty.Active,
			RemainingDays:   v.Warranty.RemainingDays,
			RemainingMonths: v.Warranty.RemainingMonths,
		}
	}
	return out
}

// FromDiscrepancies convierte el resultado de la conciliación.
func FromDiscrepancies(list []lots.StockDiscrepancy) []StockDiscrepancyDTO {
	out := make([]StockDiscrepancyDTO, 0, len(list))
	for _, d := range list {
		out = append(out, StockDiscrepancyDTO{
			ProductID:     d.ProductID,
			ProductCode:   d.ProductCode,
			CurrentStock:  d.CurrentStock,
			LedgerStock:   d.LedgerStock,
			OnHandSerials: d.OnHandSerials,
			Repaired:      d.Repaired,
		})
	}
	return out
}
