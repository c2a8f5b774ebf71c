package app

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Lots: config.LotsConfig{
			SequenceBackend:   config.SequenceBackendMemory,
			BatchSize:         50,
			BatchWorkers:      2,
			BatchTimeout:      5 * time.Second,
			BatchMaxRetries:   1,
			MaxQuantity:       1000,
			AllocationRetries: 3,
		},
	}
}

func TestBuild_MemoriaSinBaseDeDatos(t *testing.T) {
	ctx := context.Background()
	e, err := Build(ctx, testConfig(), logger.Nop(), true)
	require.NoError(t, err)
	defer e.Close()

	require.NotNil(t, e.Memory)
	assert.NoError(t, e.Ping(ctx))

	require.NoError(t, e.Memory.Repos().Products.Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", Code: "SKU", Name: "Producto"}))
	l, err := e.Orchestrator.RegisterEntry(ctx, lots.EntryInput{ProductID: "p1", Quantity: 120, CompanyID: "c1", ActorID: "u1"})
	require.NoError(t, err)
	assert.Len(t, l.Serials, 120)
	assert.Equal(t, entity.LotStatusInInventory, l.Status)

	found, err := e.Reconcile.Run(ctx, "c1", false)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBuild_ContadorEnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Lots.SequenceBackend = config.SequenceBackendRedis
	cfg.Redis.Addr = mr.Addr()

	ctx := context.Background()
	e, err := Build(ctx, cfg, logger.Nop(), false)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Memory.Repos().Products.Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", Code: "SKU", Name: "Producto"}))
	_, err = e.Orchestrator.RegisterEntry(ctx, lots.EntryInput{ProductID: "p1", Quantity: 1, CompanyID: "c1", ActorID: "u1"})
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "lots:seq:SKU:")
	assert.NoError(t, e.Ping(ctx))
}

func TestBuild_RedisInaccesible(t *testing.T) {
	cfg := testConfig()
	cfg.Lots.SequenceBackend = config.SequenceBackendRedis
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := Build(context.Background(), cfg, logger.Nop(), false)
	assert.Error(t, err)
}
