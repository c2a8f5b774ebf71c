package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, logger.Nop(), err)
	})
	return app
}

func errorBody(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	resp, reqErr := errorApp(err).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, reqErr)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWriteError_MaterializacionIncompleta(t *testing.T) {
	err := domain.AtStage(domain.StageMaterialize, &domain.MaterializeError{
		LotID: "l-1", Requested: 12, Succeeded: 5, Err: errors.New("violación de restricción"),
	})

	status, body := errorBody(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "MATERIALIZE_INCOMPLETE", body.Code)
	assert.Equal(t, string(domain.StageMaterialize), body.Stage)
	require.NotNil(t, body.Materialization)
	assert.Equal(t, dto.MaterializationReport{LotID: "l-1", Requested: 12, Succeeded: 5}, *body.Materialization)
}

func TestWriteError_MaterializacionTransitoria(t *testing.T) {
	err := domain.AtStage(domain.StageMaterialize, &domain.MaterializeError{
		LotID: "l-1", Requested: 12, Succeeded: 10, Err: fmt.Errorf("%w: timeout", domain.ErrTransient),
	})

	status, body := errorBody(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "UNAVAILABLE", body.Code)
	require.NotNil(t, body.Materialization)
	assert.Equal(t, 10, body.Materialization.Succeeded)
}

func TestWriteError_SinMaterializacion(t *testing.T) {
	status, body := errorBody(t, domain.AtStage(domain.StageAllocate, domain.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, string(domain.StageAllocate), body.Stage)
	assert.Nil(t, body.Materialization)
}
