package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

func newTestSequence(t *testing.T) (*LotNumberSequence, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLotNumberSequence(client, ""), mr
}

func TestLotNumberSequence_Consecutivos(t *testing.T) {
	seq, mr := newTestSequence(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	first, err := seq.NextLotNumber(ctx, "cam-01", date)
	require.NoError(t, err)
	second, err := seq.NextLotNumber(ctx, "CAM-01", date)
	require.NoError(t, err)
	other, err := seq.NextLotNumber(ctx, "CAM-01", date.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, "CAM-01-20240115", first)
	assert.Equal(t, "CAM-01-20240115-02", second)
	assert.Equal(t, "CAM-01-20240116", other)
	assert.True(t, mr.TTL("lots:seq:CAM-01:20240115") > 0, "la clave debe expirar")
}

func TestLotNumberSequence_ConcurrenciaSinDuplicados(t *testing.T) {
	seq, _ := newTestSequence(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := seq.NextLotNumber(ctx, "SKU", date)
			assert.NoError(t, err)
			mu.Lock()
			seen[number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestLotNumberSequence_CodigoVacio(t *testing.T) {
	seq, _ := newTestSequence(t)
	_, err := seq.NextLotNumber(context.Background(), "  ", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLotNumberSequence_RedisCaidoEsTransitorio(t *testing.T) {
	seq, mr := newTestSequence(t)
	mr.Close()
	_, err := seq.NextLotNumber(context.Background(), "SKU", time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}
