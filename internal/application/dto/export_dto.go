package dto

import "time"

// ExportRow fila plana del inventario para exportar (XLSX, CSV, PDF).
type ExportRow struct {
	StoreID      string
	StoreName    string
	Name         string
	Quantity     int64
	Unit         string
	CategoryID   string
	CategoryName string
	Threshold    *int64
	LowStock     bool
	CreatedAt    time.Time
	LastIn       *time.Time
	LastOut      *time.Time
}

// ImportRow fila de entrada de un import masivo.
type ImportRow struct {
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Unit      string `json:"unit"`
	Threshold *int64 `json:"threshold"`
	Category  string `json:"category"`
}

// ImportRowError fila rechazada durante un import, con el motivo.
type ImportRowError struct {
	Index   int    `json:"index"` // posición 1-based en el lote
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ImportResult resumen de un import masivo.
type ImportResult struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors"`
}
