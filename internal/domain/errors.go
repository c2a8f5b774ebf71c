package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidTransition  = errors.New("transición de estado de lote no permitida")
	ErrLotArchived        = errors.New("el lote está archivado")
	ErrAllocationConflict = errors.New("seriales asignados por otra operación concurrente")
	ErrQuantityTooLarge   = errors.New("cantidad supera el máximo permitido por operación")
	// ErrTransient marca fallas del almacenamiento que admiten reintento (timeouts, serialización, conexión).
	ErrTransient = errors.New("falla transitoria del almacenamiento")
)

// Stage identifica la etapa del motor de lotes donde ocurrió un error.
type Stage string

const (
	StageLotNumber   Stage = "lot_number"
	StageAllocate    Stage = "allocate"
	StageCommit      Stage = "commit"
	StageCreateLot   Stage = "create_lot"
	StageMaterialize Stage = "materialize"
	StageTransition  Stage = "transition"
	StageLedger      Stage = "ledger"
	StageSaleItems   Stage = "sale_items"
)

// StageError envuelve un error indicando la etapa que falló.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// AtStage envuelve err con la etapa indicada. Si err ya trae etapa se respeta la original.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf devuelve la etapa de un error del motor, o "" si no la tiene.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// MaterializeError reporta una materialización abortada y cuántos seriales alcanzaron a persistirse,
// para que el llamador decida reintentar solo el remanente.
type MaterializeError struct {
	LotID     string
	Requested int
	Succeeded int
	Err       error
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("materializar lote %s: %d de %d seriales persistidos: %v", e.LotID, e.Succeeded, e.Requested, e.Err)
}

func (e *MaterializeError) Unwrap() error { return e.Err }

// IsTransient indica si el error admite reintento.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
