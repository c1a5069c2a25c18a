package entity

import "time"

// Item representa el registro actual de un SKU en un almacén.
// La identidad es el par (StoreID, Name); Name es sensible a mayúsculas.
type Item struct {
	StoreID         string
	Name            string
	Quantity        int64 // invariante: nunca negativa
	Unit            string
	Threshold       *int64 // nil = sin umbral de stock bajo
	CategoryID      string
	CreatedAt       time.Time // inmutable tras la creación
	CreatedQuantity int64     // inmutable tras la creación
	LastIn          *time.Time
	LastInDelta     *int64
	LastOut         *time.Time
	LastOutDelta    *int64
	UpdatedAt       time.Time
}

// LowStock indica si el item está por debajo de su umbral configurado.
// Sin umbral nunca hay alerta.
func (i *Item) LowStock() bool {
	return i.Threshold != nil && i.Quantity < *i.Threshold
}
