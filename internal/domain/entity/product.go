package entity

import "time"

// Product representa un producto con control de lotes/seriales.
// CurrentStock es el contador derivado del kardex: solo cambia al registrar un movimiento.
type Product struct {
	ID           string
	CompanyID    string
	Code         string // código del producto, base del número de lote
	Name         string
	CurrentStock int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
