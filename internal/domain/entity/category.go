package entity

import "time"

// UncategorizedID identificador de la categoría por defecto; no puede eliminarse.
const UncategorizedID = "uncategorized"

// Category representa una categoría de items de inventario.
type Category struct {
	ID        string // slug estable derivado del nombre
	Name      string
	CreatedAt time.Time
}
