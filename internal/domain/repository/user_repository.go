package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// UserRepository contrato de persistencia de usuarios.
// FindByEmail devuelve nil si no existe.
type UserRepository interface {
	Create(user *entity.User) error
	FindByEmail(email string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
}
