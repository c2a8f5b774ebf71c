package entity

// SaleItem es una línea de venta que origina generación o asignación de lotes.
type SaleItem struct {
	ID          string
	SaleID      string
	CompanyID   string
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    int
}
