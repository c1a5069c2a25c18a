// Package stats calcula métricas agregadas sobre el historial: totales por
// periodo y consumo promedio por item. Los agregados por periodo pueden pasar
// por una caché de corta vida porque se recalculan sobre ventanas cerradas.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// AggregateCache caché opcional de agregados. Una implementación nil-safe sobre
// Redis vive en infrastructure/cache; pasar nil desactiva el cacheo.
type AggregateCache interface {
	Get(ctx context.Context, key string) ([]repository.AggregateBucket, bool)
	Set(ctx context.Context, key string, buckets []repository.AggregateBucket)
}

type StatsUseCase struct {
	historyRepo repository.HistoryRepository
	itemRepo    repository.ItemRepository
	cache       AggregateCache
}

func NewStatsUseCase(
	historyRepo repository.HistoryRepository,
	itemRepo repository.ItemRepository,
	cache AggregateCache,
) *StatsUseCase {
	return &StatsUseCase{historyRepo: historyRepo, itemRepo: itemRepo, cache: cache}
}

// Aggregate totaliza entradas y salidas por día o mes dentro del rango dado.
func (uc *StatsUseCase) Aggregate(ctx context.Context, storeID, mode string, start, end time.Time) ([]repository.AggregateBucket, error) {
	if mode != repository.AggregateByDay && mode != repository.AggregateByMonth {
		return nil, domain.ErrInvalidInput
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidInput
	}

	key := fmt.Sprintf("agg:%s:%s:%d:%d", storeID, mode, start.Unix(), end.Unix())
	if uc.cache != nil {
		if buckets, ok := uc.cache.Get(ctx, key); ok {
			return buckets, nil
		}
	}
	buckets, err := uc.historyRepo.Aggregate(storeID, mode, start, end)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, key, buckets)
	}
	return buckets, nil
}

// Consumption calcula el consumo de un item en una ventana de días: total de
// salidas (stock_out más el lado saliente de transferencias), promedio diario y
// días de cobertura al ritmo actual. A diferencia de Aggregate, los ajustes
// negativos quedan fuera: un recuento o corrección de inventario no es consumo
// y contarlo distorsionaría la proyección de cobertura. Si no hubo consumo en
// la ventana, la cobertura es nil (stock "infinito" al ritmo observado).
func (uc *StatsUseCase) Consumption(_ context.Context, storeID, name string, windowDays int) (*dto.ConsumptionResponse, error) {
	if windowDays <= 0 {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.Get(storeID, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -windowDays)
	entries, err := uc.historyRepo.List(repository.HistoryFilter{
		StoreID:  storeID,
		ItemName: name,
		Since:    &since,
		Until:    &now,
	})
	if err != nil {
		return nil, err
	}

	var totalOut int64
	for _, e := range entries {
		switch e.Action {
		case entity.ActionOut:
			totalOut += metaDelta(e)
		case entity.ActionTransfer:
			if dir, _ := e.Meta["direction"].(string); dir == entity.TransferDirectionOut {
				totalOut += metaDelta(e)
			}
		}
	}

	avg := decimal.NewFromInt(totalOut).
		DivRound(decimal.NewFromInt(int64(windowDays)), 4)
	resp := &dto.ConsumptionResponse{
		StoreID:     storeID,
		ItemName:    name,
		Quantity:    item.Quantity,
		WindowDays:  windowDays,
		TotalOut:    totalOut,
		AvgDailyOut: avg,
	}
	if avg.IsPositive() {
		coverage := decimal.NewFromInt(item.Quantity).DivRound(avg, 2)
		resp.CoverageDays = &coverage
	}
	return resp, nil
}

func metaDelta(e *entity.HistoryEntry) int64 {
	switch v := e.Meta["delta"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
