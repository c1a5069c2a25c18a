// Package query implementa la fachada de lectura del inventario: listados con
// filtros, consulta puntual, bajo stock e historial. Todas las lecturas van
// directo a los repositorios, fuera de transacción; ven el último estado
// confirmado.
package query

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

type QueryUseCase struct {
	itemRepo     repository.ItemRepository
	historyRepo  repository.HistoryRepository
	storeRepo    repository.StoreRepository
	categoryRepo repository.CategoryRepository
}

func NewQueryUseCase(
	itemRepo repository.ItemRepository,
	historyRepo repository.HistoryRepository,
	storeRepo repository.StoreRepository,
	categoryRepo repository.CategoryRepository,
) *QueryUseCase {
	return &QueryUseCase{
		itemRepo:     itemRepo,
		historyRepo:  historyRepo,
		storeRepo:    storeRepo,
		categoryRepo: categoryRepo,
	}
}

// ListItems lista items aplicando los filtros dados. Si el filtro nombra un
// almacén o categoría inexistente retorna ErrNotFound en vez de una lista vacía,
// para distinguir "filtro mal escrito" de "almacén vacío".
func (uc *QueryUseCase) ListItems(_ context.Context, filter repository.ItemFilter) ([]*entity.Item, error) {
	if filter.StoreID != "" {
		store, err := uc.storeRepo.GetByID(filter.StoreID)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, domain.ErrNotFound
		}
	}
	if filter.CategoryID != "" {
		category, err := uc.categoryRepo.GetByID(filter.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrNotFound
		}
	}
	return uc.itemRepo.List(filter)
}

// GetItem consulta puntual por clave (almacén, nombre).
func (uc *QueryUseCase) GetItem(_ context.Context, storeID, name string) (*entity.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.Get(storeID, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// LowStock lista los items con umbral definido y cantidad estrictamente por
// debajo de él. Un item sin umbral nunca aparece; cantidad == umbral tampoco.
func (uc *QueryUseCase) LowStock(ctx context.Context, storeID string) ([]*entity.Item, error) {
	return uc.ListItems(ctx, repository.ItemFilter{StoreID: storeID, LowStockOnly: true})
}

// ListHistory lista eventos del historial en orden cronológico ascendente.
func (uc *QueryUseCase) ListHistory(_ context.Context, filter repository.HistoryFilter) ([]*entity.HistoryEntry, error) {
	if filter.StoreID != "" {
		store, err := uc.storeRepo.GetByID(filter.StoreID)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, domain.ErrNotFound
		}
	}
	return uc.historyRepo.List(filter)
}

// ExportRows arma las filas planas del inventario para exportación, resolviendo
// nombres de almacén y categoría. storeID vacío exporta todos los almacenes.
func (uc *QueryUseCase) ExportRows(ctx context.Context, storeID string) ([]dto.ExportRow, error) {
	items, err := uc.ListItems(ctx, repository.ItemFilter{StoreID: storeID})
	if err != nil {
		return nil, err
	}

	stores, err := uc.storeRepo.List()
	if err != nil {
		return nil, err
	}
	storeNames := make(map[string]string, len(stores))
	for _, s := range stores {
		storeNames[s.ID] = s.Name
	}
	categories, err := uc.categoryRepo.List()
	if err != nil {
		return nil, err
	}
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	rows := make([]dto.ExportRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, dto.ExportRow{
			StoreID:      item.StoreID,
			StoreName:    storeNames[item.StoreID],
			Name:         item.Name,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			CategoryID:   item.CategoryID,
			CategoryName: categoryNames[item.CategoryID],
			Threshold:    item.Threshold,
			LowStock:     item.LowStock(),
			CreatedAt:    item.CreatedAt,
			LastIn:       item.LastIn,
			LastOut:      item.LastOut,
		})
	}
	// Orden de reporte: almacén, categoría, cantidad descendente, nombre.
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		if a.CategoryName != b.CategoryName {
			return a.CategoryName < b.CategoryName
		}
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	return rows, nil
}
