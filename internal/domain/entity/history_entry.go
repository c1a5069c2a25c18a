package entity

import "time"

// Acciones válidas de una HistoryEntry.
const (
	ActionCreate   = "create"
	ActionIn       = "in"
	ActionOut      = "out"
	ActionAdjust   = "adjust"
	ActionTransfer = "transfer"
	ActionDelete   = "delete"
)

// Direcciones de los asientos de transferencia (meta "direction").
const (
	TransferDirectionIn  = "in"
	TransferDirectionOut = "out"
)

// HistoryEntry representa un evento de mutación de inventario. El historial es
// append-only: las entradas nunca se reescriben ni se reordenan; Timestamp define
// el orden total.
type HistoryEntry struct {
	ID            string
	TransactionID string // correlaciona los dos asientos de una transferencia
	Timestamp     time.Time
	Action        string
	ItemName      string
	StoreID       string
	Actor         string // identificador opaco del usuario, lo aporta la capa de auth
	Meta          map[string]any
}
