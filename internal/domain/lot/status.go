package lot

import (
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// transitions define la máquina de estados del lote: pending -> in_inventory -> delivered.
var transitions = map[string]string{
	entity.LotStatusPending:     entity.LotStatusInInventory,
	entity.LotStatusInInventory: entity.LotStatusDelivered,
}

// IsValidStatus indica si s es un estado de lote conocido.
func IsValidStatus(s string) bool {
	switch s {
	case entity.LotStatusPending, entity.LotStatusInInventory, entity.LotStatusDelivered:
		return true
	}
	return false
}

// CanTransition valida el paso de un estado a otro. Un lote archivado no admite cambios.
func CanTransition(l *entity.Lot, to string) error {
	if l.IsArchived {
		return domain.ErrLotArchived
	}
	if !IsValidStatus(to) {
		return domain.ErrInvalidInput
	}
	if next, ok := transitions[l.Status]; !ok || next != to {
		return domain.ErrInvalidTransition
	}
	return nil
}

// SerialCascade indica qué seriales del lote cambian al transicionar a `to`:
// los estados de origen afectados (nil = todos) y el nuevo estado.
// Al ingresar solo se mueven los pendientes; los vendidos conservan su estado hasta la entrega.
func SerialCascade(to string) (from []string, status string) {
	switch to {
	case entity.LotStatusInInventory:
		return []string{entity.SerialStatusPending}, entity.SerialStatusInInventory
	case entity.LotStatusDelivered:
		return nil, entity.SerialStatusDelivered
	}
	return nil, ""
}

// LedgerEffect devuelve el movimiento de kardex que produce la transición, o "" si no produce ninguno.
func LedgerEffect(to string) string {
	switch to {
	case entity.LotStatusInInventory:
		return entity.MovementTypeEntrada
	case entity.LotStatusDelivered:
		return entity.MovementTypeSalida
	}
	return ""
}

// MovementReason es el motivo en el kardex para un movimiento originado por un lote.
func MovementReason(movementType, lotNumber string) string {
	if movementType == entity.MovementTypeSalida {
		return "entrega de lote " + lotNumber
	}
	return "ingreso de lote " + lotNumber
}
