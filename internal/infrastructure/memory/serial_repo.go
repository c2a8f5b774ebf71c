package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// SerialRepo implementa repository.SerialRepository.
type SerialRepo struct {
	v *view
}

var _ repository.SerialRepository = (*SerialRepo)(nil)

// InsertBatch es idempotente por número de serial: los existentes se devuelven tal cual.
func (r *SerialRepo) InsertBatch(ctx context.Context, serials []*entity.Serial) ([]*entity.Serial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]*entity.Serial, 0, len(serials))
	for _, in := range serials {
		if id, ok := s.serialNumbers[in.SerialNumber]; ok {
			existing := s.serials[id]
			out = append(out, &existing)
			continue
		}
		row := *in
		if row.ID == "" {
			row.ID = uuid.New().String()
		}
		row.CreatedAt, row.UpdatedAt = now, now
		s.serials[row.ID] = row
		s.serialNumbers[row.SerialNumber] = row.ID
		id, number := row.ID, row.SerialNumber
		r.v.onRollback(func() {
			delete(s.serials, id)
			delete(s.serialNumbers, number)
		})
		out = append(out, &row)
	}
	return out, nil
}

func (r *SerialRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Serial, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serialsOf(lotID), nil
}

func (r *SerialRepo) GetBySerialNumber(ctx context.Context, serialNumber string) (*entity.Serial, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.serialNumbers[serialNumber]
	if !ok {
		return nil, nil
	}
	sr := s.serials[id]
	return &sr, nil
}

func (r *SerialRepo) MarkSold(ctx context.Context, lotID string, ids []string, saleID string) (int64, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lots[lotID]
	if !ok || l.IsArchived {
		return 0, nil
	}
	var n int64
	now := s.now()
	for _, id := range ids {
		sr, ok := s.serials[id]
		if !ok || sr.LotID != lotID {
			continue
		}
		if sr.Status != entity.SerialStatusPending && sr.Status != entity.SerialStatusInInventory {
			continue
		}
		r.set(sr, func(x *entity.Serial) {
			x.Status = entity.SerialStatusSold
			x.SaleID = saleID
			x.UpdatedAt = now
		})
		n++
	}
	return n, nil
}

func (r *SerialRepo) Reassign(ctx context.Context, ids []string, lotID string) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lots[lotID]; !ok {
		return domain.ErrNotFound
	}
	now := s.now()
	for _, id := range ids {
		sr, ok := s.serials[id]
		if !ok {
			return domain.ErrNotFound
		}
		r.set(sr, func(x *entity.Serial) {
			x.LotID = lotID
			x.UpdatedAt = now
		})
	}
	return nil
}

func (r *SerialRepo) UpdateStatusByLot(ctx context.Context, lotID string, from []string, status string) (int64, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := s.now()
	for _, sr := range s.serials {
		if sr.LotID != lotID {
			continue
		}
		if from != nil && !slices.Contains(from, sr.Status) {
			continue
		}
		r.set(sr, func(x *entity.Serial) {
			x.Status = status
			x.UpdatedAt = now
		})
		n++
	}
	return n, nil
}

func (r *SerialRepo) CountOnHand(ctx context.Context, productID string) (int64, error) {
	s := r.v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, sr := range s.serials {
		if sr.ProductID != productID {
			continue
		}
		l, ok := s.lots[sr.LotID]
		if ok && !l.IsArchived && l.Status == entity.LotStatusInInventory {
			n++
		}
	}
	return n, nil
}

// set aplica fn al serial y registra el valor previo. Requiere s.mu tomado.
func (r *SerialRepo) set(sr entity.Serial, fn func(x *entity.Serial)) {
	s := r.v.s
	prev := sr
	fn(&sr)
	s.serials[sr.ID] = sr
	r.v.onRollback(func() { s.serials[prev.ID] = prev })
}
