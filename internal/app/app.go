// Package app arma el motor de lotes según la configuración: PostgreSQL o memoria para los datos,
// y PostgreSQL, Redis o memoria para el contador de números de lote.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/migration"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// Engine casos de uso del motor ya conectados a sus adaptadores.
type Engine struct {
	Orchestrator *lots.Orchestrator
	Allocator    *lots.Allocator
	Status       *lots.StatusUseCase
	Queries      *lots.QueryUseCase
	Reconcile    *lots.ReconcileUseCase
	Products     *usecase.ProductUseCase

	// Memory solo está definido cuando no hay base de datos configurada.
	Memory *memory.Store

	pool  *pgxpool.Pool
	db    *postgres.TxRunner
	redis *redis.Client
}

type backend struct {
	tx       lots.TxRunner
	repos    lots.Repos
	sales    repository.SaleRepository
	sequence repository.LotNumberSequence
}

// Build abre las conexiones necesarias y construye los casos de uso.
// Con migrate=true aplica las migraciones pendientes antes de arrancar.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) (*Engine, error) {
	e := &Engine{}
	var b backend

	if cfg.DB.Enabled() {
		if migrate {
			if err := runMigrations(cfg.DB.ConnectionString(), log); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		e.pool = pool
		e.db = postgres.NewTxRunner(pool)
		b = backend{
			tx:       e.db,
			repos:    postgres.NewRepos(pool),
			sales:    postgres.NewSaleRepository(pool),
			sequence: postgres.NewLotNumberSequence(pool),
		}
	} else {
		log.Warn().Msg("sin DATABASE_URL/DB_HOST: usando almacén en memoria")
		store := memory.NewStore()
		e.Memory = store
		b = backend{
			tx:       store.TxRunner(),
			repos:    store.Repos(),
			sales:    store.Sales(),
			sequence: store.Sequence(),
		}
	}

	switch cfg.Lots.SequenceBackend {
	case config.SequenceBackendRedis:
		client, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.redis = client
		b.sequence = cache.NewLotNumberSequence(client, "")
	case config.SequenceBackendMemory:
		if e.Memory == nil {
			log.Warn().Msg("contador de lotes en memoria con base de datos: solo válido con una instancia")
			b.sequence = memory.NewStore().Sequence()
		}
	}
	log.Info().
		Bool("postgres", e.pool != nil).
		Str("sequence_backend", cfg.Lots.SequenceBackend).
		Msg("motor de lotes configurado")

	e.wire(cfg.Lots, b, log)
	return e, nil
}

func (e *Engine) wire(cfg config.LotsConfig, b backend, log *logger.Logger) {
	ledger := lots.NewLedger(log)
	e.Status = lots.NewStatusUseCase(b.tx, b.repos.Lots, ledger, log)
	e.Allocator = lots.NewAllocator(b.tx, b.repos.Lots, ledger, cfg.AllocationRetries, log)
	materializer := lots.NewMaterializer(b.repos.Serials, lots.MaterializerConfig{
		BatchSize:    cfg.BatchSize,
		Workers:      cfg.BatchWorkers,
		BatchTimeout: cfg.BatchTimeout,
		MaxRetries:   cfg.BatchMaxRetries,
		MaxQuantity:  cfg.MaxQuantity,
	}, log)
	e.Orchestrator = lots.NewOrchestrator(b.sales, b.repos.Products, b.repos.Lots, b.sequence, e.Allocator, materializer, e.Status, log)
	e.Queries = lots.NewQueryUseCase(b.repos)
	e.Reconcile = lots.NewReconcileUseCase(b.tx, b.repos, log)
	e.Products = usecase.NewProductUseCase(b.repos.Products)
}

// Ping verifica las dependencias externas (para /health).
func (e *Engine) Ping(ctx context.Context) error {
	if e.db != nil {
		if err := e.db.Ping(ctx); err != nil {
			return err
		}
	}
	if e.redis != nil {
		if err := e.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close libera las conexiones abiertas por Build.
func (e *Engine) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

func runMigrations(databaseURL string, log *logger.Logger) error {
	m, err := migration.New(databaseURL, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}
