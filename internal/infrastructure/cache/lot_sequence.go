package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// sequenceTTL el contador de un día deja de servir pasado ese día; se conserva un margen.
const sequenceTTL = 48 * time.Hour

// LotNumberSequence contador de números de lote compartido entre procesos vía INCR.
type LotNumberSequence struct {
	client *redis.Client
	prefix string
}

var _ repository.LotNumberSequence = (*LotNumberSequence)(nil)

// NewLotNumberSequence construye el contador. prefix vacío usa "lots:seq".
func NewLotNumberSequence(client *redis.Client, prefix string) *LotNumberSequence {
	if prefix == "" {
		prefix = "lots:seq"
	}
	return &LotNumberSequence{client: client, prefix: prefix}
}

func (s *LotNumberSequence) key(productCode string, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, lot.NormalizeProductCode(productCode), lot.DateKey(date))
}

// NextLotNumber incrementa el contador del producto en la fecha y arma el número de lote.
func (s *LotNumberSequence) NextLotNumber(ctx context.Context, productCode string, date time.Time) (string, error) {
	if lot.NormalizeProductCode(productCode) == "" {
		return "", domain.ErrInvalidInput
	}
	key := s.key(productCode, date)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, sequenceTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("incr %s: %w: %w", key, err, domain.ErrTransient)
	}
	return lot.FormatLotNumber(productCode, date, incr.Val()), nil
}
