package lots

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/lot"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// MaterializerConfig parámetros de inserción masiva de seriales.
type MaterializerConfig struct {
	BatchSize    int
	Workers      int
	BatchTimeout time.Duration
	MaxRetries   int
	MaxQuantity  int
	// RetryInterval intervalo inicial del backoff exponencial entre reintentos de un grupo.
	RetryInterval time.Duration
}

// DefaultMaterializerConfig valores por defecto.
func DefaultMaterializerConfig() MaterializerConfig {
	return MaterializerConfig{
		BatchSize:     lot.DefaultBatchSize,
		Workers:       4,
		BatchTimeout:  30 * time.Second,
		MaxRetries:    3,
		MaxQuantity:   100000,
		RetryInterval: 200 * time.Millisecond,
	}
}

func (c MaterializerConfig) withDefaults() MaterializerConfig {
	d := DefaultMaterializerConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = d.BatchTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxQuantity <= 0 {
		c.MaxQuantity = d.MaxQuantity
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = d.RetryInterval
	}
	return c
}

// Materializer genera y persiste los seriales de un lote por grupos, de forma idempotente:
// repetir la llamada para el mismo lote no duplica seriales.
type Materializer struct {
	serials repository.SerialRepository
	cfg     MaterializerConfig
	log     *logger.Logger
}

// NewMaterializer construye el materializador.
func NewMaterializer(serials repository.SerialRepository, cfg MaterializerConfig, log *logger.Logger) *Materializer {
	return &Materializer{serials: serials, cfg: cfg.withDefaults(), log: log.Component("materializer")}
}

// CheckQuantity valida una cantidad a materializar.
func (m *Materializer) CheckQuantity(quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if quantity > m.cfg.MaxQuantity {
		return domain.ErrQuantityTooLarge
	}
	return nil
}

// Materialize crea `quantity` seriales para el lote con secuencias 1..quantity y devuelve las filas
// persistidas en orden de secuencia. Si un grupo agota sus reintentos devuelve *domain.MaterializeError
// con la cantidad efectivamente persistida.
func (m *Materializer) Materialize(ctx context.Context, l *entity.Lot, quantity int) ([]*entity.Serial, error) {
	if l == nil || l.ID == "" || l.LotNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := m.CheckQuantity(quantity); err != nil {
		return nil, err
	}

	batches := lot.Batches(l, quantity, m.cfg.BatchSize)
	results := make([][]*entity.Serial, batches.Count())
	var succeeded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)
	for batch, ok := batches.Next(); ok; batch, ok = batches.Next() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rows, err := m.insertWithRetry(gctx, batch)
			if err != nil {
				m.log.Error().Err(err).
					Str("lot_id", l.ID).
					Int("batch", batch.Index).
					Int("size", len(batch.Serials)).
					Msg("grupo de seriales no persistido")
				return err
			}
			results[batch.Index] = rows
			succeeded.Add(int64(len(rows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &domain.MaterializeError{
			LotID:     l.ID,
			Requested: quantity,
			Succeeded: int(succeeded.Load()),
			Err:       err,
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.MaterializeError{LotID: l.ID, Requested: quantity, Succeeded: int(succeeded.Load()), Err: err}
	}

	out := make([]*entity.Serial, 0, quantity)
	for _, rows := range results {
		out = append(out, rows...)
	}
	m.log.Info().
		Str("lot_id", l.ID).
		Str("lot_number", l.LotNumber).
		Int("serials", len(out)).
		Int("batches", len(results)).
		Msg("seriales materializados")
	return out, nil
}

// insertWithRetry inserta un grupo con timeout propio; solo los errores transitorios se reintentan.
func (m *Materializer) insertWithRetry(ctx context.Context, batch lot.SerialBatch) ([]*entity.Serial, error) {
	var rows []*entity.Serial
	op := func() error {
		bctx, cancel := context.WithTimeout(ctx, m.cfg.BatchTimeout)
		defer cancel()
		var err error
		rows, err = m.serials.InsertBatch(bctx, batch.Serials)
		if err == nil {
			return nil
		}
		if domain.IsTransient(err) || (bctx.Err() != nil && ctx.Err() == nil) {
			m.log.Warn().Err(err).Int("batch", batch.Index).Msg("falla transitoria insertando seriales")
			return err
		}
		return backoff.Permanent(err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = m.cfg.RetryInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(m.cfg.MaxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return rows, nil
}
