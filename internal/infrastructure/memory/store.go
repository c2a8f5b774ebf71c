// Package memory implementa los puertos del motor de lotes en memoria, para desarrollo sin base
// de datos y para pruebas. Las transacciones se serializan y se deshacen con un journal.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// Store guarda productos, lotes, seriales, kardex y líneas de venta.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex // una transacción a la vez; equivale al bloqueo de fila del producto

	products      map[string]entity.Product
	lots          map[string]entity.Lot // sin seriales
	lotOrder      map[string]int64
	lotNumbers    map[string]string // número -> id
	serials       map[string]entity.Serial
	serialNumbers map[string]string // número -> id
	movements     []entity.Movement
	sequences     map[string]int64
	saleItems     map[string][]entity.SaleItem
	clock         int64

	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]entity.Product),
		lots:          make(map[string]entity.Lot),
		lotOrder:      make(map[string]int64),
		lotNumbers:    make(map[string]string),
		serials:       make(map[string]entity.Serial),
		serialNumbers: make(map[string]string),
		sequences:     make(map[string]int64),
		saleItems:     make(map[string][]entity.SaleItem),
		now:           time.Now,
	}
}

// view da acceso a los datos; dentro de una transacción registra cómo deshacer cada cambio.
type view struct {
	s    *Store
	undo *[]func()
}

func (v *view) onRollback(fn func()) {
	if v.undo != nil {
		*v.undo = append(*v.undo, fn)
	}
}

func reposFor(v *view) lots.Repos {
	return lots.Repos{
		Products:  &ProductRepo{v: v},
		Lots:      &LotRepo{v: v},
		Serials:   &SerialRepo{v: v},
		Movements: &MovementRepo{v: v},
	}
}

// Repos devuelve los repositorios fuera de transacción.
func (s *Store) Repos() lots.Repos {
	return reposFor(&view{s: s})
}

// TxRunner devuelve el ejecutor de transacciones del almacén.
func (s *Store) TxRunner() *TxRunner {
	return &TxRunner{s: s}
}

// TxRunner implementa lots.TxRunner sobre el almacén en memoria.
type TxRunner struct {
	s *Store
}

var _ lots.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn de forma exclusiva; si fn falla se deshacen sus cambios en orden inverso.
func (r *TxRunner) Run(ctx context.Context, fn func(tx lots.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	var undo []func()
	err := fn(reposFor(&view{s: r.s, undo: &undo}))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.s.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		r.s.mu.Unlock()
	}
	return err
}

// AddSaleItems registra las líneas de una venta (las ventas viven fuera del motor de lotes).
func (s *Store) AddSaleItems(items ...entity.SaleItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.saleItems[it.SaleID] = append(s.saleItems[it.SaleID], it)
	}
}

// SaleRepo implementa repository.SaleRepository.
type SaleRepo struct {
	s *Store
}

var _ repository.SaleRepository = (*SaleRepo)(nil)

// Sales devuelve el repositorio de líneas de venta.
func (s *Store) Sales() *SaleRepo {
	return &SaleRepo{s: s}
}

func (r *SaleRepo) ListItems(ctx context.Context, saleID, companyID string) ([]entity.SaleItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.SaleItem
	for _, it := range r.s.saleItems[saleID] {
		if companyID == "" || it.CompanyID == companyID {
			out = append(out, it)
		}
	}
	return out, nil
}
