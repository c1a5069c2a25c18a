package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/testutil"
)

func newCatalog(t *testing.T) (*usecase.StoreUseCase, *usecase.CategoryUseCase, *inventory.MovementUseCase, *testutil.MemStore) {
	t.Helper()
	mem := testutil.NewMemStore()
	storeUC := usecase.NewStoreUseCase(mem, mem.Stores(), mem.Items())
	categoryUC := usecase.NewCategoryUseCase(mem, mem.Categories())
	engine := inventory.NewMovementUseCase(mem, mem.Stores(), mem.Categories())
	return storeUC, categoryUC, engine, mem
}

// ── Almacenes ─────────────────────────────────────────────────────────────────

func TestStoreCreate_SlugYDesambiguacion(t *testing.T) {
	storeUC, _, _, _ := newCatalog(t)
	ctx := context.Background()

	s1, err := storeUC.Create(ctx, "Bodega Central")
	require.NoError(t, err)
	assert.Equal(t, "bodega-central", s1.ID)

	// Mismo nombre exacto: duplicado.
	_, err = storeUC.Create(ctx, "Bodega Central")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Nombre distinto que normaliza al mismo slug: sufijo -2, luego -3.
	s2, err := storeUC.Create(ctx, "Bodega central")
	require.NoError(t, err)
	assert.Equal(t, "bodega-central-2", s2.ID)

	s3, err := storeUC.Create(ctx, "BODEGA CENTRAL")
	require.NoError(t, err)
	assert.Equal(t, "bodega-central-3", s3.ID)
}

func TestStoreCreate_NombreVacio(t *testing.T) {
	storeUC, _, _, _ := newCatalog(t)
	_, err := storeUC.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStoreDelete_RechazaConItemsSinCascade(t *testing.T) {
	storeUC, _, engine, _ := newCatalog(t)
	ctx := context.Background()

	s, err := storeUC.Create(ctx, "Bodega Sur")
	require.NoError(t, err)
	_, err = engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID: s.ID, Name: "perno", Quantity: 5, Actor: "ana",
	})
	require.NoError(t, err)

	err = storeUC.Delete(ctx, s.ID, false, "ana")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// El almacén y su item siguen intactos.
	got, err := storeUC.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bodega Sur", got.Name)
}

func TestStoreDelete_CascadeEliminaItemsYRegistraAsientos(t *testing.T) {
	storeUC, _, engine, mem := newCatalog(t)
	ctx := context.Background()

	s, err := storeUC.Create(ctx, "Bodega Sur")
	require.NoError(t, err)
	for _, name := range []string{"perno", "tuerca"} {
		_, err = engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
			StoreID: s.ID, Name: name, Quantity: 5, Actor: "ana",
		})
		require.NoError(t, err)
	}

	err = storeUC.Delete(ctx, s.ID, true, "ana")
	require.NoError(t, err)

	_, err = storeUC.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	item, err := mem.Items().Get(s.ID, "perno")
	require.NoError(t, err)
	assert.Nil(t, item)

	// 2 creates + 2 deletes de la cascada.
	deletes := 0
	for _, e := range mem.Entries() {
		if e.Action == entity.ActionDelete {
			deletes++
			assert.Equal(t, true, e.Meta["cascade"])
			assert.Equal(t, "ana", e.Actor)
		}
	}
	assert.Equal(t, 2, deletes, "cada item eliminado en cascada deja su asiento")
}

func TestStoreDelete_NuncaElUltimo(t *testing.T) {
	storeUC, _, _, _ := newCatalog(t)
	err := storeUC.Delete(context.Background(), entity.DefaultStoreID, true, "ana")
	assert.ErrorIs(t, err, domain.ErrConflict, "el último almacén es indestructible")
}

func TestStoreDelete_Inexistente(t *testing.T) {
	storeUC, _, _, _ := newCatalog(t)
	ctx := context.Background()
	_, err := storeUC.Create(ctx, "Bodega Sur")
	require.NoError(t, err)

	err = storeUC.Delete(ctx, "no-existe", false, "ana")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Categorías ────────────────────────────────────────────────────────────────

func TestCategoryCreate_SlugConDiacriticos(t *testing.T) {
	_, categoryUC, _, _ := newCatalog(t)
	ctx := context.Background()

	c, err := categoryUC.Create(ctx, "Ferretería")
	require.NoError(t, err)
	assert.Equal(t, "ferreteria", c.ID)

	_, err = categoryUC.Create(ctx, "Ferretería")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategoryEnsure_PorIdNombreOCreacion(t *testing.T) {
	_, categoryUC, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := categoryUC.Create(ctx, "Ferretería")
	require.NoError(t, err)

	// Por id.
	c, err := categoryUC.Ensure(ctx, "ferreteria")
	require.NoError(t, err)
	assert.Equal(t, created.ID, c.ID)

	// Por nombre.
	c, err = categoryUC.Ensure(ctx, "Ferretería")
	require.NoError(t, err)
	assert.Equal(t, created.ID, c.ID)

	// Inexistente: se crea.
	c, err = categoryUC.Ensure(ctx, "Pinturas")
	require.NoError(t, err)
	assert.Equal(t, "pinturas", c.ID)

	// Vacío: uncategorized.
	c, err = categoryUC.Ensure(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, entity.UncategorizedID, c.ID)
}

func TestCategoryDelete_UncategorizedIndestructible(t *testing.T) {
	_, categoryUC, _, _ := newCatalog(t)
	err := categoryUC.Delete(context.Background(), entity.UncategorizedID, true)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCategoryDelete_CascadeReasignaItems(t *testing.T) {
	_, categoryUC, engine, mem := newCatalog(t)
	ctx := context.Background()

	c, err := categoryUC.Create(ctx, "Ferretería")
	require.NoError(t, err)
	_, err = engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID: entity.DefaultStoreID, Name: "perno", Quantity: 5, CategoryID: c.ID, Actor: "ana",
	})
	require.NoError(t, err)

	// Sin cascade: rechazo.
	err = categoryUC.Delete(ctx, c.ID, false)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Con cascade: la categoría cae y el item pasa a uncategorized.
	err = categoryUC.Delete(ctx, c.ID, true)
	require.NoError(t, err)

	_, err = categoryUC.Get(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	item, err := mem.Items().Get(entity.DefaultStoreID, "perno")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, entity.UncategorizedID, item.CategoryID)
}
