package lot

import "github.com/jhoicas/Inventario-lotes/internal/domain/entity"

// DefaultBatchSize es el tamaño de lote de inserción de seriales por defecto.
const DefaultBatchSize = 1000

// SerialBatch es un grupo contiguo de seriales listos para insertar.
type SerialBatch struct {
	Index   int
	Serials []*entity.Serial
}

// Batcher genera los seriales de un lote por grupos bajo demanda, de modo que nunca
// se construye la lista completa en memoria.
type Batcher struct {
	lot   *entity.Lot
	total int
	size  int
	next  int // próxima secuencia 1-based
	index int
}

// Batches prepara la generación de `quantity` seriales para el lote en grupos de `size`.
func Batches(l *entity.Lot, quantity, size int) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batcher{lot: l, total: quantity, size: size, next: 1}
}

// Count devuelve cuántos grupos produce el generador en total.
func (b *Batcher) Count() int {
	if b.total <= 0 {
		return 0
	}
	return (b.total + b.size - 1) / b.size
}

// Next construye el siguiente grupo. ok es false cuando no quedan seriales.
func (b *Batcher) Next() (batch SerialBatch, ok bool) {
	if b.next > b.total {
		return SerialBatch{}, false
	}
	end := min(b.next+b.size-1, b.total)
	serials := make([]*entity.Serial, 0, end-b.next+1)
	for seq := b.next; seq <= end; seq++ {
		serials = append(serials, NewSerial(b.lot, seq))
	}
	batch = SerialBatch{Index: b.index, Serials: serials}
	b.next = end + 1
	b.index++
	return batch, true
}

// NewSerial construye el serial `seq` de un lote, con el estado que corresponde al estado del lote.
func NewSerial(l *entity.Lot, seq int) *entity.Serial {
	return &entity.Serial{
		SerialNumber: SerialNumber(l.LotNumber, seq),
		Sequence:     seq,
		LotID:        l.ID,
		ProductID:    l.ProductID,
		ProductCode:  l.ProductCode,
		ProductName:  l.ProductName,
		CompanyID:    l.CompanyID,
		SaleID:       l.SaleID,
		Status:       SerialStatusFor(l.Status),
		CreatedBy:    l.CreatedBy,
	}
}

// SerialStatusFor devuelve el estado inicial de un serial según el estado de su lote.
func SerialStatusFor(lotStatus string) string {
	switch lotStatus {
	case entity.LotStatusInInventory:
		return entity.SerialStatusInInventory
	case entity.LotStatusDelivered:
		return entity.SerialStatusDelivered
	}
	return entity.SerialStatusPending
}
