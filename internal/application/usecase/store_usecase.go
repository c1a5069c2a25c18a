// Package usecase agrupa los casos de uso de catálogo: almacenes y categorías.
// Los ids son slugs derivados del nombre (con sufijo -2, -3 ante colisión), al
// estilo de las URLs amigables, y el almacén "default" y la categoría
// "uncategorized" se siembran en la migración inicial.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/slug"
)

type StoreUseCase struct {
	txRunner  CatalogTxRunner
	storeRepo repository.StoreRepository
	itemRepo  repository.ItemRepository
}

func NewStoreUseCase(
	txRunner CatalogTxRunner,
	storeRepo repository.StoreRepository,
	itemRepo repository.ItemRepository,
) *StoreUseCase {
	return &StoreUseCase{txRunner: txRunner, storeRepo: storeRepo, itemRepo: itemRepo}
}

// Create da de alta un almacén con id slug derivado del nombre. Nombres
// duplicados se rechazan; ids en colisión reciben sufijo numérico.
func (uc *StoreUseCase) Create(ctx context.Context, name string) (*entity.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Store
	err := uc.txRunner.RunCatalog(ctx, func(
		stores repository.StoreRepository,
		_ repository.CategoryRepository,
		_ repository.ItemRepository,
		_ repository.HistoryRepository,
	) error {
		existing, err := stores.GetByName(name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		all, err := stores.List()
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(all))
		for _, s := range all {
			taken[s.ID] = true
		}
		store := &entity.Store{
			ID:        slug.Next(slug.Make(name, "store"), taken),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := stores.Create(store); err != nil {
			return err
		}
		result = store
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List lista todos los almacenes.
func (uc *StoreUseCase) List(_ context.Context) ([]*entity.Store, error) {
	return uc.storeRepo.List()
}

// Get consulta un almacén por id.
func (uc *StoreUseCase) Get(_ context.Context, id string) (*entity.Store, error) {
	store, err := uc.storeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	return store, nil
}

// CountItems cuenta los items registrados en un almacén.
func (uc *StoreUseCase) CountItems(_ context.Context, id string) (int, error) {
	return uc.storeRepo.CountItems(id)
}

// Delete elimina un almacén. Si todavía tiene items y cascade es false la
// operación se rechaza con ErrConflict; con cascade true los items se eliminan
// en la misma transacción y cada uno deja su asiento "delete" en el historial.
// El último almacén del sistema nunca se puede eliminar.
func (uc *StoreUseCase) Delete(ctx context.Context, id string, cascade bool, actor string) error {
	return uc.txRunner.RunCatalog(ctx, func(
		stores repository.StoreRepository,
		_ repository.CategoryRepository,
		items repository.ItemRepository,
		history repository.HistoryRepository,
	) error {
		store, err := stores.GetByID(id)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrNotFound
		}
		total, err := stores.Count()
		if err != nil {
			return err
		}
		if total <= 1 {
			return domain.ErrConflict
		}
		count, err := stores.CountItems(id)
		if err != nil {
			return err
		}
		if count > 0 && !cascade {
			return domain.ErrConflict
		}

		if count > 0 {
			contained, err := items.List(repository.ItemFilter{StoreID: id})
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			for _, item := range contained {
				entry := &entity.HistoryEntry{
					ID:            uuid.New().String(),
					TransactionID: uuid.New().String(),
					Timestamp:     now,
					Action:        entity.ActionDelete,
					ItemName:      item.Name,
					StoreID:       id,
					Actor:         actor,
					Meta: map[string]any{
						"previous_quantity": item.Quantity,
						"unit":              item.Unit,
						"cascade":           true,
					},
				}
				if err := history.Append(entry); err != nil {
					return err
				}
			}
		}
		// El borrado del almacén arrastra sus items (FK ON DELETE CASCADE).
		return stores.Delete(id)
	})
}
