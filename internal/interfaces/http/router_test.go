package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	apphttp "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/inventario-lotes/pkg/jwt"
)

func newInventoryApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewSeeded([]entity.Unit{
		{ID: "kg", Code: "kg", Name: "Kilogramo", ConversionFactor: decimal.NewFromInt(1), IsBaseUnit: true, GroupID: "masa"},
		{ID: "g", Code: "g", Name: "Gramo", ConversionFactor: decimal.RequireFromString("0.001"), GroupID: "masa"},
	})
	log := zerolog.Nop()
	settings := inventory.DefaultSettings()
	units := inventory.NewUnitService(store, store.Units(), store.Batches(), store.Aggregates(), settings, log)
	projector := inventory.NewAggregateProjector(store, store.Aggregates(), nil, settings, log)
	ledger := inventory.NewBatchLedger(store, units, store.Batches(), projector, settings, log)
	allocator := inventory.NewFefoAllocator(store, units, projector, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Units:            units,
		Ledger:           ledger,
		Allocator:        allocator,
		Recorder:         inventory.NewAdjustmentRecorder(store, allocator, store.Adjustments(), settings, log),
		Projector:        projector,
		Report:           inventory.NewExpiryReport(ledger, settings),
		ExpiringSoonDays: settings.ExpiringSoonDays,
		JWTSecret:        testJWTSecret,
	})
	return app
}

// call ejecuta la petición y decodifica la respuesta en out si no es nil.
func call(t *testing.T, app *fiber.App, method, path, auth string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func receiveBody(number string, qty int64, expiryDays int) map[string]interface{} {
	return map[string]interface{}{
		"product_id":     "P",
		"unit_id":        "kg",
		"batch_number":   number,
		"quantity":       qty,
		"expiry_date":    time.Now().AddDate(0, 0, expiryDays).Format(time.RFC3339),
		"purchase_price": "2.5",
	}
}

func TestRouter_RecepcionConsumoYAgregado(t *testing.T) {
	app := newInventoryApp(t)
	tok := tokenForRole(t, pkgjwt.RoleBodeguero)

	var created map[string]string
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/batches", tok, receiveBody("B1", 5, 10), &created))
	assert.NotEmpty(t, created["id"])
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/batches", tok, receiveBody("B2", 5, 40), nil))

	var dep dto.DepletionResponse
	status := call(t, app, http.MethodPost, "/api/depletions", tok, map[string]interface{}{
		"product_id": "P", "unit_id": "kg", "quantity": "7", "reason": "sale",
	}, &dep)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dep.Consumed.Equal(decimal.NewFromInt(7)))
	assert.True(t, dep.Shortfall.IsZero())
	require.Len(t, dep.ConsumedBatches, 2)
	assert.Equal(t, "B1", dep.ConsumedBatches[0].BatchNumber)
	assert.True(t, dep.ConsumedCost.Equal(decimal.RequireFromString("17.5")))

	var agg dto.AggregateResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/P/units/kg/aggregate", tok, nil, &agg))
	assert.True(t, agg.Quantity.Equal(decimal.NewFromInt(3)))

	var batches []dto.BatchResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/P/batches", tok, nil, &batches))
	require.Len(t, batches, 1, "el lote agotado se omite por defecto")
	assert.Equal(t, "B2", batches[0].BatchNumber)
	assert.Equal(t, "healthy", batches[0].Expiry.Bucket)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/P/batches?include_zero=true", tok, nil, &batches))
	assert.Len(t, batches, 2)
}

func TestRouter_ErroresDeDominio(t *testing.T) {
	app := newInventoryApp(t)
	tok := tokenForRole(t, pkgjwt.RoleAdmin)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/batches", tok, receiveBody("B1", 5, 10), nil))

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/batches", tok, receiveBody("B1", 1, 10), &errResp))
	assert.Equal(t, "DUPLICATE_BATCH", errResp.Code)

	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/adjustments", tok, map[string]interface{}{
		"product_id": "P", "unit_id": "kg", "new_quantity": "9", "reason": "stock_take",
	}, &errResp))
	assert.Equal(t, "UNATTRIBUTED_INCREASE", errResp.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/products/X/units/kg/aggregate", tok, nil, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodPost, "/api/depletions", tok, map[string]interface{}{
		"product_id": "P", "unit_id": "kg", "quantity": "1", "quantity_unit_id": "lb", "reason": "sale",
	}, &errResp))
}

func TestRouter_ValidacionDelCuerpo(t *testing.T) {
	app := newInventoryApp(t)
	tok := tokenForRole(t, pkgjwt.RoleBodeguero)

	var errResp dto.ErrorResponse
	body := receiveBody("B1", 0, 10)
	body["reason"] = "x"
	require.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/batches", tok, body, &errResp))
	assert.Equal(t, "VALIDATION", errResp.Code)
	require.NotEmpty(t, errResp.Details)
	assert.Equal(t, "quantity", errResp.Details[0].Field)

	require.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/depletions", tok, map[string]interface{}{
		"product_id": "P", "unit_id": "kg", "quantity": "1", "reason": "robo",
	}, &errResp))
	require.Len(t, errResp.Details, 1)
	assert.Equal(t, "reason", errResp.Details[0].Field)
}

func TestRouter_Roles(t *testing.T) {
	app := newInventoryApp(t)

	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/units", "", nil, nil))
	assert.Equal(t, http.StatusForbidden,
		call(t, app, http.MethodPost, "/api/batches", tokenForRole(t, pkgjwt.RoleConsulta), receiveBody("B1", 5, 10), nil))
	assert.Equal(t, http.StatusForbidden,
		call(t, app, http.MethodPost, "/api/units", tokenForRole(t, pkgjwt.RoleBodeguero), map[string]interface{}{
			"code": "lb", "conversion_factor": "0.45359237", "group_id": "masa",
		}, nil))

	var units []dto.UnitResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/units", tokenForRole(t, pkgjwt.RoleConsulta), nil, &units))
	assert.Len(t, units, 2)
}

func TestRouter_UnidadesYConversion(t *testing.T) {
	app := newInventoryApp(t)
	admin := tokenForRole(t, pkgjwt.RoleAdmin)

	var conv dto.ConvertResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/units/convert?quantity=2&from=kg&to=g", admin, nil, &conv))
	assert.True(t, conv.Result.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, "2000", conv.Display)

	var unit dto.UnitResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/units", admin, map[string]interface{}{
		"code": "lb", "name": "Libra", "conversion_factor": "0.45359237", "group_id": "masa",
	}, &unit))
	assert.Equal(t, "lb", unit.Code)

	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, "/api/units/"+unit.ID, admin, nil, nil))

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/units/convert?quantity=abc&from=kg&to=g", admin, nil, &errResp))
	assert.Equal(t, "VALIDATION", errResp.Code)
}

func TestRouter_UmbralYStockBajo(t *testing.T) {
	app := newInventoryApp(t)
	tok := tokenForRole(t, pkgjwt.RoleBodeguero)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/batches", tok, receiveBody("B1", 5, 10), nil))

	var agg dto.AggregateResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/products/P/units/kg/aggregate/threshold", tok,
		map[string]interface{}{"threshold": "5", "alert_enabled": true}, &agg))
	assert.True(t, agg.IsLow)

	var low []dto.AggregateResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/aggregates/low-stock", tok, nil, &low))
	require.Len(t, low, 1)
	assert.Equal(t, "P", low[0].ProductID)

	var rec dto.ReconcileResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/products/P/units/kg/aggregate/reconcile", tok, nil, &rec))
	assert.True(t, rec.Delta.IsZero())

	var report dto.ExpiryReportResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/P/expiry?unit_id=kg", tok, nil, &report))
	assert.Equal(t, 1, report.Counts["expiring_soon"])
	assert.True(t, report.ValueAtRisk.Equal(decimal.RequireFromString("12.5")))
}

func TestRouter_AjustesPaginados(t *testing.T) {
	app := newInventoryApp(t)
	tok := tokenForRole(t, pkgjwt.RoleBodeguero)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/batches", tok, receiveBody("B1", 5, 10), nil))

	for _, reason := range []string{"damage", "stock_take"} {
		require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/adjustments", tok, map[string]interface{}{
			"product_id": "P", "unit_id": "kg", "new_quantity": "3", "reason": reason,
		}, nil))
	}

	var page dto.AdjustmentListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/P/units/kg/adjustments?limit=1", tok, nil, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "stock_take", page.Items[0].Reason)
	assert.Equal(t, testUserID, page.Items[0].ActorID)
	assert.True(t, page.Items[0].Delta.IsZero())
	assert.True(t, page.Page.HasMore)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/P/units/kg/adjustments?limit=1&offset=1", tok, nil, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "damage", page.Items[0].Reason)
	assert.True(t, page.Items[0].Delta.Equal(decimal.NewFromInt(-2)))

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/products/P/units/kg/adjustments?limit=9999", tok, nil, &errResp))
}
