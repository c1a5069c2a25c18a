package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// StoreRepository contrato de persistencia de almacenes.
// GetByID devuelve nil si no existe.
type StoreRepository interface {
	GetByID(id string) (*entity.Store, error)
	GetByName(name string) (*entity.Store, error)
	List() ([]*entity.Store, error)
	Create(store *entity.Store) error
	Delete(id string) error
	Count() (int, error)
	CountItems(id string) (int, error)
}
