package usecase

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// CatalogTxRunner ejecuta fn dentro de una transacción con los repositorios de
// catálogo ligados a ella. Los borrados en cascada (almacén con items, categoría
// referenciada) necesitan tocar catálogo, ledger e historial de forma atómica.
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		stores repository.StoreRepository,
		categories repository.CategoryRepository,
		items repository.ItemRepository,
		history repository.HistoryRepository,
	) error) error
}
