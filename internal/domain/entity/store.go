package entity

import "time"

// DefaultStoreID identificador del almacén por defecto (sembrado por migración).
const DefaultStoreID = "default"

// Store representa un almacén o tienda donde se guarda inventario (multi-almacén).
type Store struct {
	ID        string // slug estable derivado del nombre
	Name      string
	CreatedAt time.Time
}
