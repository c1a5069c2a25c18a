package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/query"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/testutil"
)

func newFacade(t *testing.T) (*query.QueryUseCase, *inventory.MovementUseCase, *testutil.MemStore) {
	t.Helper()
	mem := testutil.NewMemStore()
	engine := inventory.NewMovementUseCase(mem, mem.Stores(), mem.Categories())
	facade := query.NewQueryUseCase(mem.Items(), mem.History(), mem.Stores(), mem.Categories())
	return facade, engine, mem
}

func umbral(v int64) *int64 { return &v }

func TestListItems_FiltroPorAlmacen(t *testing.T) {
	facade, engine, mem := newFacade(t)
	ctx := context.Background()
	require.NoError(t, mem.Stores().Create(&entity.Store{ID: "bodega-sur", Name: "Bodega Sur"}))

	_, err := engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID: entity.DefaultStoreID, Name: "perno", Quantity: 5, Actor: "ana",
	})
	require.NoError(t, err)
	_, err = engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID: "bodega-sur", Name: "tuerca", Quantity: 9, Actor: "ana",
	})
	require.NoError(t, err)

	todos, err := facade.ListItems(ctx, repository.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	sur, err := facade.ListItems(ctx, repository.ItemFilter{StoreID: "bodega-sur"})
	require.NoError(t, err)
	require.Len(t, sur, 1)
	assert.Equal(t, "tuerca", sur[0].Name)

	_, err = facade.ListItems(ctx, repository.ItemFilter{StoreID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "filtro con almacén inexistente no es lista vacía")
}

func TestGetItem(t *testing.T) {
	facade, engine, _ := newFacade(t)
	ctx := context.Background()

	_, err := engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID: entity.DefaultStoreID, Name: "perno", Quantity: 5, Actor: "ana",
	})
	require.NoError(t, err)

	item, err := facade.GetItem(ctx, entity.DefaultStoreID, "perno")
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Quantity)

	_, err = facade.GetItem(ctx, entity.DefaultStoreID, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = facade.GetItem(ctx, entity.DefaultStoreID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestLowStock verifica el corte estricto: cantidad < umbral entra, cantidad ==
// umbral queda fuera, y un item sin umbral nunca aparece por baja que esté su
// cantidad.
func TestLowStock_CorteEstricto(t *testing.T) {
	facade, engine, _ := newFacade(t)
	ctx := context.Background()

	casos := []inventory.CreateOrSetInput{
		{StoreID: entity.DefaultStoreID, Name: "bajo", Quantity: 2, Threshold: umbral(5), Actor: "ana"},
		{StoreID: entity.DefaultStoreID, Name: "en-umbral", Quantity: 5, Threshold: umbral(5), Actor: "ana"},
		{StoreID: entity.DefaultStoreID, Name: "sin-umbral", Quantity: 0, Actor: "ana"},
		{StoreID: entity.DefaultStoreID, Name: "sobrado", Quantity: 50, Threshold: umbral(5), Actor: "ana"},
	}
	for _, c := range casos {
		_, err := engine.CreateOrSet(ctx, c)
		require.NoError(t, err)
	}

	bajos, err := facade.LowStock(ctx, entity.DefaultStoreID)
	require.NoError(t, err)
	require.Len(t, bajos, 1)
	assert.Equal(t, "bajo", bajos[0].Name)
}

func TestListHistory_OrdenYFiltros(t *testing.T) {
	facade, engine, _ := newFacade(t)
	ctx := context.Background()

	_, err := engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID: entity.DefaultStoreID, Name: "perno", Quantity: 10, Actor: "ana",
	})
	require.NoError(t, err)
	_, err = engine.StockIn(ctx, inventory.MovementInput{
		StoreID: entity.DefaultStoreID, Name: "perno", Delta: 3, Actor: "ana",
	})
	require.NoError(t, err)
	_, err = engine.StockOut(ctx, inventory.MovementInput{
		StoreID: entity.DefaultStoreID, Name: "perno", Delta: 1, Actor: "ana",
	})
	require.NoError(t, err)

	entries, err := facade.ListHistory(ctx, repository.HistoryFilter{StoreID: entity.DefaultStoreID})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Orden cronológico ascendente.
	assert.Equal(t, entity.ActionCreate, entries[0].Action)
	assert.Equal(t, entity.ActionIn, entries[1].Action)
	assert.Equal(t, entity.ActionOut, entries[2].Action)

	salidas, err := facade.ListHistory(ctx, repository.HistoryFilter{Action: entity.ActionOut})
	require.NoError(t, err)
	require.Len(t, salidas, 1)

	limitadas, err := facade.ListHistory(ctx, repository.HistoryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limitadas, 2)
}

func TestExportRows_ResuelveNombres(t *testing.T) {
	facade, engine, mem := newFacade(t)
	ctx := context.Background()
	require.NoError(t, mem.Categories().Create(&entity.Category{ID: "ferreteria", Name: "Ferretería"}))

	_, err := engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID: entity.DefaultStoreID, Name: "perno", Quantity: 2, Unit: "uds",
		Threshold: umbral(5), CategoryID: "ferreteria", Actor: "ana",
	})
	require.NoError(t, err)

	rows, err := facade.ExportRows(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Almacén principal", rows[0].StoreName)
	assert.Equal(t, "Ferretería", rows[0].CategoryName)
	assert.True(t, rows[0].LowStock)
}

func TestExportRows_OrdenDeReporte(t *testing.T) {
	facade, engine, mem := newFacade(t)
	ctx := context.Background()
	require.NoError(t, mem.Categories().Create(&entity.Category{ID: "ferreteria", Name: "Ferretería"}))

	// Misma categoría con cantidades distintas, más una sin categoría.
	for _, it := range []struct {
		name     string
		qty      int64
		category string
	}{
		{"perno", 5, "ferreteria"},
		{"tuerca", 50, "ferreteria"},
		{"arandela", 50, "ferreteria"},
		{"caja", 1, ""},
	} {
		_, err := engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
			StoreID: entity.DefaultStoreID, Name: it.name, Quantity: it.qty,
			CategoryID: it.category, Actor: "ana",
		})
		require.NoError(t, err)
	}

	rows, err := facade.ExportRows(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Categoría asciende, cantidad desciende, nombre desempata.
	nombres := []string{rows[0].Name, rows[1].Name, rows[2].Name, rows[3].Name}
	assert.Equal(t, []string{"arandela", "tuerca", "perno", "caja"}, nombres)
}
