package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// CategoryRepository contrato de persistencia de categorías.
// GetByID/GetByName devuelven nil si no existe.
type CategoryRepository interface {
	GetByID(id string) (*entity.Category, error)
	GetByName(name string) (*entity.Category, error)
	List() ([]*entity.Category, error)
	Create(category *entity.Category) error
	Delete(id string) error
	// CountReferences cuenta los items que apuntan a la categoría.
	CountReferences(id string) (int, error)
	// ClearReferences reasigna a "uncategorized" los items de la categoría.
	ClearReferences(id string) error
}
