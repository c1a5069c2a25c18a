package repository

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Modos de agregación temporal del historial.
const (
	AggregateByDay   = "day"
	AggregateByMonth = "month"
)

// HistoryFilter filtros para listados del historial.
type HistoryFilter struct {
	StoreID  string
	ItemName string
	Action   string
	Since    *time.Time
	Until    *time.Time
	Limit    int // <= 0 = sin límite
}

// AggregateBucket totales de entrada/salida de un periodo (día o mes).
type AggregateBucket struct {
	Bucket   time.Time
	InTotal  int64
	OutTotal int64
	Net      int64
}

// HistoryRepository contrato del History Log: secuencia durable y append-only de
// eventos de mutación. Append es la única escritura que usa el motor; no existe
// update ni delete de entradas individuales. Clear es una operación administrativa
// explícita fuera del contrato del motor (la capa HTTP la restringe a admin).
type HistoryRepository interface {
	Append(entry *entity.HistoryEntry) error
	// List devuelve entradas ordenadas por timestamp ascendente.
	List(filter HistoryFilter) ([]*entity.HistoryEntry, error)
	// Aggregate agrupa deltas por día o mes dentro del rango [start, end].
	Aggregate(storeID, mode string, start, end time.Time) ([]AggregateBucket, error)
	Clear() error
}
