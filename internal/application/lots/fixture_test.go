package lots_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

const (
	companyID = "c1"
	actorID   = "u1"
)

type fixture struct {
	store        *memory.Store
	repos        lots.Repos
	ledger       *lots.Ledger
	status       *lots.StatusUseCase
	allocator    *lots.Allocator
	materializer *lots.Materializer
	orchestrator *lots.Orchestrator
	queries      *lots.QueryUseCase
	reconcile    *lots.ReconcileUseCase
}

func testMaterializerConfig() lots.MaterializerConfig {
	return lots.MaterializerConfig{
		BatchSize:     100,
		Workers:       4,
		BatchTimeout:  5 * time.Second,
		MaxRetries:    2,
		MaxQuantity:   5000,
		RetryInterval: time.Millisecond,
	}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil, testMaterializerConfig())
}

// newFixtureWith permite envolver el repositorio de seriales usado por el materializador.
func newFixtureWith(t *testing.T, wrap func(repository.SerialRepository) repository.SerialRepository, cfg lots.MaterializerConfig) *fixture {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	repos := store.Repos()
	tx := store.TxRunner()

	serials := repos.Serials
	if wrap != nil {
		serials = wrap(serials)
	}
	ledger := lots.NewLedger(log)
	status := lots.NewStatusUseCase(tx, repos.Lots, ledger, log)
	allocator := lots.NewAllocator(tx, repos.Lots, ledger, 3, log)
	materializer := lots.NewMaterializer(serials, cfg, log)
	return &fixture{
		store:        store,
		repos:        repos,
		ledger:       ledger,
		status:       status,
		allocator:    allocator,
		materializer: materializer,
		orchestrator: lots.NewOrchestrator(store.Sales(), repos.Products, repos.Lots, store.Sequence(), allocator, materializer, status, log),
		queries:      lots.NewQueryUseCase(repos),
		reconcile:    lots.NewReconcileUseCase(tx, repos, log),
	}
}

func (f *fixture) addProduct(t *testing.T, id, code string) {
	t.Helper()
	require.NoError(t, f.repos.Products.Create(context.Background(), &entity.Product{
		ID: id, CompanyID: companyID, Code: code, Name: "Producto " + code,
	}))
}

func (f *fixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (f *fixture) lot(t *testing.T, id string) *entity.Lot {
	t.Helper()
	l, err := f.repos.Lots.GetWithSerials(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l
}

// pendingGeneralLot crea un lote pendiente sin venta con sus seriales.
func (f *fixture) pendingGeneralLot(t *testing.T, productID, code string, qty int) *entity.Lot {
	t.Helper()
	ctx := context.Background()
	number, err := f.store.Sequence().NextLotNumber(ctx, code, time.Now())
	require.NoError(t, err)
	l := &entity.Lot{
		LotNumber: number, ProductID: productID, ProductCode: code, CompanyID: companyID,
		Quantity: qty, Status: entity.LotStatusPending, GeneratedDate: time.Now(), CreatedBy: actorID,
	}
	require.NoError(t, f.repos.Lots.Create(ctx, l))
	_, err = f.materializer.Materialize(ctx, l, qty)
	require.NoError(t, err)
	return l
}

func serialNumbers(serials []*entity.Serial) []string {
	out := make([]string, len(serials))
	for i, s := range serials {
		out[i] = s.SerialNumber
	}
	return out
}

// flakySerials falla las llamadas a InsertBatch indicadas (1-based).
type flakySerials struct {
	repository.SerialRepository
	calls  atomic.Int32
	failOn map[int32]error
}

func (f *flakySerials) InsertBatch(ctx context.Context, serials []*entity.Serial) ([]*entity.Serial, error) {
	n := f.calls.Add(1)
	if err, ok := f.failOn[n]; ok {
		return nil, err
	}
	return f.SerialRepository.InsertBatch(ctx, serials)
}
