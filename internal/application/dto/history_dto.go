package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// HistoryEntryResponse representación de un evento del historial.
type HistoryEntryResponse struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transaction_id"`
	Timestamp     time.Time      `json:"timestamp"`
	Action        string         `json:"action"`
	ItemName      string         `json:"item_name"`
	StoreID       string         `json:"store_id"`
	Actor         string         `json:"actor,omitempty"`
	Meta          map[string]any `json:"meta"`
}

// ToHistoryEntryResponse convierte la entidad de dominio a DTO.
func ToHistoryEntryResponse(e *entity.HistoryEntry) *HistoryEntryResponse {
	if e == nil {
		return nil
	}
	return &HistoryEntryResponse{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		Timestamp:     e.Timestamp,
		Action:        e.Action,
		ItemName:      e.ItemName,
		StoreID:       e.StoreID,
		Actor:         e.Actor,
		Meta:          e.Meta,
	}
}

// AggregateBucketResponse totales de un periodo.
type AggregateBucketResponse struct {
	Bucket   time.Time `json:"bucket"`
	InTotal  int64     `json:"in_total"`
	OutTotal int64     `json:"out_total"`
	Net      int64     `json:"net"`
}

// ToAggregateResponse convierte los buckets del repositorio a DTO.
func ToAggregateResponse(buckets []repository.AggregateBucket) []AggregateBucketResponse {
	out := make([]AggregateBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, AggregateBucketResponse{
			Bucket:   b.Bucket,
			InTotal:  b.InTotal,
			OutTotal: b.OutTotal,
			Net:      b.Net,
		})
	}
	return out
}

// ConsumptionResponse métricas de consumo de un item en una ventana de días.
type ConsumptionResponse struct {
	StoreID      string          `json:"store_id"`
	ItemName     string          `json:"item_name"`
	Quantity     int64           `json:"quantity"`
	WindowDays   int             `json:"window_days"`
	TotalOut     int64           `json:"total_out"`
	AvgDailyOut  decimal.Decimal `json:"avg_daily_out"`
	CoverageDays *decimal.Decimal `json:"coverage_days"` // nil si no hay consumo en la ventana
}
