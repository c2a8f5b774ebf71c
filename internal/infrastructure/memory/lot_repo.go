package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// LotRepo implementa repository.LotRepository.
type LotRepo struct {
	v *view
}

var _ repository.LotRepository = (*LotRepo)(nil)

func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lotNumbers[l.LotNumber]; ok {
		return domain.ErrDuplicate
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	stored := *l
	stored.Serials = nil
	s.clock++
	s.lots[l.ID] = stored
	s.lotOrder[l.ID] = s.clock
	s.lotNumbers[l.LotNumber] = l.ID

	id, number := l.ID, l.LotNumber
	r.v.onRollback(func() {
		delete(s.lots, id)
		delete(s.lotOrder, id)
		delete(s.lotNumbers, number)
	})
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LotRepo) GetWithSerials(ctx context.Context, id string) (*entity.Lot, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lots[id]
	if !ok {
		return nil, nil
	}
	l.Serials = s.serialsOf(id)
	return &l, nil
}

func (r *LotRepo) ListAvailable(ctx context.Context, productID, companyID string, statuses []string) ([]*entity.Lot, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.collect(func(l entity.Lot) bool {
		return l.ProductID == productID &&
			(companyID == "" || l.CompanyID == companyID) &&
			!l.IsArchived && l.SaleID == "" &&
			slices.Contains(statuses, l.Status)
	})
	for _, l := range out {
		l.Serials = s.serialsOf(l.ID)
	}
	lot.SortFIFO(out)
	return out, nil
}

// ListBySale devuelve los lotes de la venta, el más reciente primero.
func (r *LotRepo) ListBySale(ctx context.Context, saleID, companyID string) ([]*entity.Lot, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.collect(func(l entity.Lot) bool {
		return l.SaleID == saleID && (companyID == "" || l.CompanyID == companyID)
	})
	slices.Reverse(out)
	return out, nil
}

func (r *LotRepo) List(ctx context.Context, companyID string, f repository.LotFilter) ([]*entity.Lot, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	out := s.collect(func(l entity.Lot) bool {
		switch {
		case l.CompanyID != companyID:
			return false
		case l.IsArchived && !f.IncludeArchived:
			return false
		case f.Status != "" && l.Status != f.Status:
			return false
		case f.ProductID != "" && l.ProductID != f.ProductID:
			return false
		case f.SaleID != "" && l.SaleID != f.SaleID:
			return false
		}
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(l.LotNumber), search) ||
			strings.Contains(strings.ToLower(l.ProductCode), search) ||
			strings.Contains(strings.ToLower(l.ProductName), search)
	})
	// más recientes primero
	slices.Reverse(out)
	if f.Offset >= len(out) {
		return []*entity.Lot{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *LotRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	return r.mutate(id, func(l *entity.Lot) {
		l.Status = status
		switch status {
		case entity.LotStatusInInventory:
			l.IngressDate = &at
		case entity.LotStatusDelivered:
			l.DeliveryDate = &at
		}
	})
}

func (r *LotRepo) LinkSale(ctx context.Context, id, saleID string) error {
	return r.mutate(id, func(l *entity.Lot) { l.SaleID = saleID })
}

func (r *LotRepo) Archive(ctx context.Context, id string) error {
	return r.mutate(id, func(l *entity.Lot) { l.IsArchived = true })
}

func (r *LotRepo) mutate(id string, fn func(l *entity.Lot)) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	prev := l
	fn(&l)
	l.UpdatedAt = s.now()
	s.lots[id] = l
	r.v.onRollback(func() { s.lots[id] = prev })
	return nil
}

// collect devuelve copias de los lotes que cumplen keep en orden de creación. Requiere s.mu tomado.
func (s *Store) collect(keep func(l entity.Lot) bool) []*entity.Lot {
	out := make([]*entity.Lot, 0)
	for _, l := range s.lots {
		if keep(l) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.lotOrder[out[i].ID] < s.lotOrder[out[j].ID] })
	return out
}

// serialsOf devuelve copias de los seriales del lote por secuencia. Requiere s.mu tomado.
func (s *Store) serialsOf(lotID string) []*entity.Serial {
	out := make([]*entity.Serial, 0)
	for _, sr := range s.serials {
		if sr.LotID == lotID {
			sr := sr
			out = append(out, &sr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}
