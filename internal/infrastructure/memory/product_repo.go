package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct {
	v *view
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if _, ok := s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range s.products {
		if other.CompanyID == p.CompanyID && other.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = *p
	id := p.ID
	r.v.onRollback(func() { delete(s.products, id) })
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate no bloquea más allá de la transacción en curso: el TxRunner ya es exclusivo.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) AdjustStock(ctx context.Context, id string, delta int64) (int64, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	prev := p
	p.CurrentStock += delta
	p.UpdatedAt = s.now()
	s.products[id] = p
	r.v.onRollback(func() { s.products[id] = prev })
	return p.CurrentStock, nil
}

func (r *ProductRepo) SetStock(ctx context.Context, id string, stock int64) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	prev := p
	p.CurrentStock = stock
	p.UpdatedAt = s.now()
	s.products[id] = p
	r.v.onRollback(func() { s.products[id] = prev })
	return nil
}

func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Product, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(s.products))
	for _, p := range s.products {
		if companyID != "" && p.CompanyID != companyID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
