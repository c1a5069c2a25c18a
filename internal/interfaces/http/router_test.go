package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/importer"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/query"
	"github.com/jhoicas/Almacen-api/internal/application/stats"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/internal/testutil"
)

// newTestAPI levanta la API completa sobre el store en memoria y devuelve la
// app junto a un token de admin listo para usar.
func newTestAPI(t *testing.T) (*fiber.App, *testutil.MemStore, string) {
	t.Helper()
	mem := testutil.NewMemStore()

	engine := inventory.NewMovementUseCase(mem, mem.Stores(), mem.Categories())
	queries := query.NewQueryUseCase(mem.Items(), mem.History(), mem.Stores(), mem.Categories())
	statsUC := stats.NewStatsUseCase(mem.History(), mem.Items(), nil)
	storeUC := usecase.NewStoreUseCase(mem, mem.Stores(), mem.Items())
	categoryUC := usecase.NewCategoryUseCase(mem, mem.Categories())
	authUC := auth.NewAuthUseCase(mem.Users(), auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	})
	importerUC := importer.NewImporterUseCase(engine, categoryUC)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:      engine,
		Queries:     queries,
		Stats:       statsUC,
		StoreUC:     storeUC,
		CategoryUC:  categoryUC,
		AuthUC:      authUC,
		Importer:    importerUC,
		HistoryRepo: mem.History(),
		JWTSecret:   testJWTSecret,
	})

	_, err := authUC.RegisterUser(dto.RegisterRequest{
		Email: "admin@almacen.test", Password: "contraseña-larga", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)
	login, err := authUC.Login(dto.LoginRequest{Email: "admin@almacen.test", Password: "contraseña-larga"})
	require.NoError(t, err)

	return app, mem, "Bearer " + login.Token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ── Flujo completo de inventario por HTTP ────────────────────────────────────

func TestAPI_FlujoCompletoDeInventario(t *testing.T) {
	app, _, token := newTestAPI(t)

	// Crear item con reinventario absoluto.
	resp := doJSON(t, app, http.MethodPut, "/api/stores/default/items/perno", token, dto.SetItemRequest{
		Quantity: 100, Unit: "uds", Category: "Ferretería",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := decode[dto.ItemResponse](t, resp)
	assert.Equal(t, int64(100), item.Quantity)
	assert.Equal(t, "ferreteria", item.CategoryID, "la categoría en texto libre se resuelve a slug")

	// Entrada de 20.
	resp = doJSON(t, app, http.MethodPost, "/api/stores/default/items/perno/in", token, dto.MovementRequest{Delta: 20})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item = decode[dto.ItemResponse](t, resp)
	assert.Equal(t, int64(120), item.Quantity)
	require.NotNil(t, item.LastInDelta)
	assert.Equal(t, int64(20), *item.LastInDelta)

	// Salida mayor que el stock: 409 sin tocar nada.
	resp = doJSON(t, app, http.MethodPost, "/api/stores/default/items/perno/out", token, dto.MovementRequest{Delta: 150})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/stores/default/items/perno", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item = decode[dto.ItemResponse](t, resp)
	assert.Equal(t, int64(120), item.Quantity, "el rechazo no cambió la cantidad")

	// Historial: create + in, en orden.
	resp = doJSON(t, app, http.MethodGet, "/api/history?store=default", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]dto.HistoryEntryResponse](t, resp)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.ActionCreate, entries[0].Action)
	assert.Equal(t, entity.ActionIn, entries[1].Action)
	assert.Equal(t, "admin@almacen.test", entries[1].Actor, "el actor sale del token")

	// Eliminar: el historial previo sobrevive y aparece el asiento delete.
	resp = doJSON(t, app, http.MethodDelete, "/api/stores/default/items/perno", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/history?store=default", token, nil)
	entries = decode[[]dto.HistoryEntryResponse](t, resp)
	require.Len(t, entries, 3)
	assert.Equal(t, entity.ActionDelete, entries[2].Action)

	resp = doJSON(t, app, http.MethodGet, "/api/stores/default/items/perno", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AjusteConSigno(t *testing.T) {
	app, _, token := newTestAPI(t)

	resp := doJSON(t, app, http.MethodPut, "/api/stores/default/items/perno", token, dto.SetItemRequest{Quantity: 10, Unit: "uds"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// El mismo cuerpo de movimiento sirve para adjust, con delta con signo.
	resp = doJSON(t, app, http.MethodPost, "/api/stores/default/items/perno/adjust", token, dto.MovementRequest{Delta: -3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := decode[dto.ItemResponse](t, resp)
	assert.Equal(t, int64(7), item.Quantity)

	// Delta cero: entrada inválida.
	resp = doJSON(t, app, http.MethodPost, "/api/stores/default/items/perno/adjust", token, dto.MovementRequest{Delta: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_TransferenciaEntreAlmacenes(t *testing.T) {
	app, _, token := newTestAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stores", token, dto.CreateStoreRequest{Name: "Bodega Sur"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	store := decode[dto.StoreResponse](t, resp)
	assert.Equal(t, "bodega-sur", store.ID)

	resp = doJSON(t, app, http.MethodPut, "/api/stores/default/items/llave", token, dto.SetItemRequest{Quantity: 10, Unit: "uds"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/items/llave/transfer", token, dto.TransferRequest{
		SourceStoreID: "default", TargetStoreID: "bodega-sur", Delta: 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	transfer := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, int64(6), transfer.Source.Quantity)
	assert.Equal(t, int64(4), transfer.Target.Quantity)

	// Ambos asientos transfer comparten transaction_id.
	resp = doJSON(t, app, http.MethodGet, "/api/history?action=transfer", token, nil)
	entries := decode[[]dto.HistoryEntryResponse](t, resp)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].TransactionID, entries[1].TransactionID)
}

func TestAPI_ListadoBajoStock(t *testing.T) {
	app, _, token := newTestAPI(t)

	umbral := int64(5)
	resp := doJSON(t, app, http.MethodPut, "/api/stores/default/items/bajo", token, dto.SetItemRequest{Quantity: 2, Threshold: &umbral})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodPut, "/api/stores/default/items/sobrado", token, dto.SetItemRequest{Quantity: 50, Threshold: &umbral})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/items?low_stock=true", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]dto.ItemResponse](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, "bajo", items[0].Name)
	assert.True(t, items[0].LowStock)
}

func TestAPI_ImportJSON(t *testing.T) {
	app, _, token := newTestAPI(t)

	rows := []dto.ImportRow{
		{Name: "perno", Quantity: 100, Unit: "uds"},
		{Name: "", Quantity: 5},
	}
	resp := doJSON(t, app, http.MethodPost, "/api/import", token, rows)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[dto.ImportResult](t, resp)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 1)
}

// ── Autorización ──────────────────────────────────────────────────────────────

func TestAPI_RutasProtegidasSinToken(t *testing.T) {
	app, _, _ := newTestAPI(t)

	rutas := []struct{ method, path string }{
		{http.MethodGet, "/api/items"},
		{http.MethodGet, "/api/history"},
		{http.MethodGet, "/api/stores"},
		{http.MethodPost, "/api/import"},
	}
	for _, r := range rutas {
		resp := doJSON(t, app, r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
			fmt.Sprintf("%s %s debe exigir token", r.method, r.path))
		resp.Body.Close()
	}
}

func TestAPI_OperacionesAdminBloqueadasParaVendedor(t *testing.T) {
	app, _, _ := newTestAPI(t)
	vendedorToken := tokenForRole(t, entity.RoleVendedor)

	rutas := []struct{ method, path string }{
		{http.MethodDelete, "/api/history"},
		{http.MethodDelete, "/api/stores/default"},
		{http.MethodDelete, "/api/categories/uncategorized"},
		{http.MethodPost, "/api/auth/register"},
	}
	for _, r := range rutas {
		resp := doJSON(t, app, r.method, r.path, vendedorToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode,
			fmt.Sprintf("%s %s debe exigir rol admin", r.method, r.path))
		resp.Body.Close()
	}
}

func TestAPI_RegistroSoloAdmin(t *testing.T) {
	app, _, adminToken := newTestAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", adminToken, dto.RegisterRequest{
		Email: "bodeguero@almacen.test", Password: "contraseña-larga", Role: entity.RoleBodeguero,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Email repetido: conflicto.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", adminToken, dto.RegisterRequest{
		Email: "bodeguero@almacen.test", Password: "contraseña-larga",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}
