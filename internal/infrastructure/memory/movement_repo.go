package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// MovementRepo implementa repository.MovementRepository.
type MovementRepo struct {
	v *view
}

var _ repository.MovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	s.movements = append(s.movements, *m)
	id := m.ID
	r.v.onRollback(func() {
		for i := len(s.movements) - 1; i >= 0; i-- {
			if s.movements[i].ID == id {
				s.movements = append(s.movements[:i], s.movements[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Movement, 0)
	for i := len(s.movements) - 1; i >= 0; i-- {
		if s.movements[i].ProductID != productID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		m := s.movements[i]
		out = append(out, &m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MovementRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum int64
	for _, m := range s.movements {
		if m.ProductID != productID {
			continue
		}
		if m.Type == entity.MovementTypeSalida {
			sum -= m.Quantity
		} else {
			sum += m.Quantity
		}
	}
	return sum, nil
}

// LotNumberSequence contador de números de lote en memoria (un solo proceso).
type LotNumberSequence struct {
	s *Store
}

var _ repository.LotNumberSequence = (*LotNumberSequence)(nil)

// Sequence devuelve el contador de números de lote del almacén.
func (s *Store) Sequence() *LotNumberSequence {
	return &LotNumberSequence{s: s}
}

func (q *LotNumberSequence) NextLotNumber(ctx context.Context, productCode string, date time.Time) (string, error) {
	s := q.s
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lot.NormalizeProductCode(productCode) + "|" + lot.DateKey(date)
	s.sequences[key]++
	return lot.FormatLotNumber(productCode, date, s.sequences[key]), nil
}
