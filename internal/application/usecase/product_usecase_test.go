package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
)

func TestProductUseCase_CreateYConsulta(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)

	created, err := uc.Create(ctx, "c1", dto.CreateProductRequest{Code: " CAM-01 ", Name: "Cámara"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "CAM-01", created.Code)
	assert.Zero(t, created.CurrentStock)

	got, err := uc.GetByID(ctx, "c1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = uc.GetByID(ctx, "c2", created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.GetByID(ctx, "c1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_CodigoDuplicadoPorEmpresa(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)

	_, err := uc.Create(ctx, "c1", dto.CreateProductRequest{Code: "SKU", Name: "A"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", dto.CreateProductRequest{Code: "SKU", Name: "B"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, "c2", dto.CreateProductRequest{Code: "SKU", Name: "C"})
	assert.NoError(t, err, "otra empresa puede usar el mismo código")

	list, err := uc.List(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProductUseCase_Validacion(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)
	_, err := uc.Create(context.Background(), "c1", dto.CreateProductRequest{Code: "  ", Name: "A"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
