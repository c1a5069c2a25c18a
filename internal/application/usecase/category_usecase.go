package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/slug"
)

type CategoryUseCase struct {
	txRunner     CatalogTxRunner
	categoryRepo repository.CategoryRepository
}

func NewCategoryUseCase(txRunner CatalogTxRunner, categoryRepo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{txRunner: txRunner, categoryRepo: categoryRepo}
}

// Create da de alta una categoría con id slug derivado del nombre.
func (uc *CategoryUseCase) Create(ctx context.Context, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Category
	err := uc.txRunner.RunCatalog(ctx, func(
		_ repository.StoreRepository,
		categories repository.CategoryRepository,
		_ repository.ItemRepository,
		_ repository.HistoryRepository,
	) error {
		created, err := createCategory(categories, name)
		if err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List lista todas las categorías.
func (uc *CategoryUseCase) List(_ context.Context) ([]*entity.Category, error) {
	return uc.categoryRepo.List()
}

// Get consulta una categoría por id.
func (uc *CategoryUseCase) Get(_ context.Context, id string) (*entity.Category, error) {
	category, err := uc.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	return category, nil
}

// Ensure resuelve una referencia de categoría en texto libre: primero como id,
// luego como nombre; si no existe la crea. Es lo que usa el import masivo para
// aceptar "Ferretería" sin exigir el slug exacto.
func (uc *CategoryUseCase) Ensure(ctx context.Context, ref string) (*entity.Category, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uc.Get(ctx, entity.UncategorizedID)
	}

	var result *entity.Category
	err := uc.txRunner.RunCatalog(ctx, func(
		_ repository.StoreRepository,
		categories repository.CategoryRepository,
		_ repository.ItemRepository,
		_ repository.HistoryRepository,
	) error {
		byID, err := categories.GetByID(ref)
		if err != nil {
			return err
		}
		if byID != nil {
			result = byID
			return nil
		}
		byName, err := categories.GetByName(ref)
		if err != nil {
			return err
		}
		if byName != nil {
			result = byName
			return nil
		}
		created, err := createCategory(categories, ref)
		if err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete elimina una categoría. "uncategorized" es indestructible. Si hay items
// que la referencian y cascade es false se rechaza con ErrConflict; con cascade
// true los items quedan reasignados a "uncategorized" en la misma transacción.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string, cascade bool) error {
	if id == entity.UncategorizedID {
		return domain.ErrConflict
	}
	return uc.txRunner.RunCatalog(ctx, func(
		_ repository.StoreRepository,
		categories repository.CategoryRepository,
		_ repository.ItemRepository,
		_ repository.HistoryRepository,
	) error {
		category, err := categories.GetByID(id)
		if err != nil {
			return err
		}
		if category == nil {
			return domain.ErrNotFound
		}
		refs, err := categories.CountReferences(id)
		if err != nil {
			return err
		}
		if refs > 0 {
			if !cascade {
				return domain.ErrConflict
			}
			if err := categories.ClearReferences(id); err != nil {
				return err
			}
		}
		return categories.Delete(id)
	})
}

func createCategory(categories repository.CategoryRepository, name string) (*entity.Category, error) {
	existing, err := categories.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	all, err := categories.List()
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(all))
	for _, c := range all {
		taken[c.ID] = true
	}
	category := &entity.Category{
		ID:        slug.Next(slug.Make(name, "category"), taken),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := categories.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}
