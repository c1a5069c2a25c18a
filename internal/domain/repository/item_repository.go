package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// ItemFilter filtros para listados del ledger de items.
type ItemFilter struct {
	StoreID      string // vacío = todos los almacenes
	CategoryID   string // vacío = todas las categorías
	LowStockOnly bool   // true = solo items con threshold definido y quantity < threshold
}

// ItemRepository contrato del Ledger Store: estado actual por clave (almacén, nombre).
// Get devuelve nil si la clave no existe. Un Upsert/Delete que retorna sin error
// queda confirmado de forma durable (commit de la transacción que lo envuelve).
type ItemRepository interface {
	Get(storeID, name string) (*entity.Item, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción
	// activa; serializa escritores concurrentes sobre la misma clave.
	GetForUpdate(storeID, name string) (*entity.Item, error)
	// LockKey serializa la clave aunque la fila todavía no exista (advisory lock
	// con alcance de transacción); cubre la carrera de dos creates simultáneos.
	LockKey(storeID, name string) error
	Upsert(item *entity.Item) error
	Delete(storeID, name string) error
	List(filter ItemFilter) ([]*entity.Item, error)
}
