package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/query"
	"github.com/jhoicas/Almacen-api/internal/application/stats"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// HistoryHandler expone el historial de mutaciones y sus agregados.
type HistoryHandler struct {
	queries *query.QueryUseCase
	stats   *stats.StatsUseCase
	history repository.HistoryRepository
}

// NewHistoryHandler construye el handler de historial.
func NewHistoryHandler(queries *query.QueryUseCase, statsUC *stats.StatsUseCase, history repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{queries: queries, stats: statsUC, history: history}
}

// List godoc
// @Summary      Listar historial (orden cronológico ascendente)
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        store   query  string  false  "Filtrar por almacén"
// @Param        item    query  string  false  "Filtrar por item"
// @Param        action  query  string  false  "create|in|out|adjust|transfer|delete"
// @Param        since   query  string  false  "RFC3339"
// @Param        until   query  string  false  "RFC3339"
// @Param        limit   query  int     false  "Máximo de entradas"
// @Success      200  {array}   dto.HistoryEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	filter := repository.HistoryFilter{
		StoreID:  c.Query("store"),
		ItemName: c.Query("item"),
		Action:   c.Query("action"),
		Limit:    c.QueryInt("limit"),
	}
	var err error
	if filter.Since, err = parseTimeQuery(c, "since"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "since debe ser RFC3339"})
	}
	if filter.Until, err = parseTimeQuery(c, "until"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "until debe ser RFC3339"})
	}

	entries, err := h.queries.ListHistory(c.Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]*dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ToHistoryEntryResponse(e))
	}
	return c.JSON(out)
}

// Aggregate godoc
// @Summary      Totales de entrada/salida por día o mes
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        store  query  string  false  "Filtrar por almacén"
// @Param        mode   query  string  true   "day | month"
// @Param        start  query  string  true   "RFC3339"
// @Param        end    query  string  true   "RFC3339"
// @Success      200  {array}   dto.AggregateBucketResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history/aggregate [get]
func (h *HistoryHandler) Aggregate(c *fiber.Ctx) error {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "start debe ser RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "end debe ser RFC3339"})
	}
	buckets, err := h.stats.Aggregate(c.Context(), c.Query("store"), c.Query("mode"), start, end)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.ToAggregateResponse(buckets))
}

// Consumption godoc
// @Summary      Consumo promedio y días de cobertura de un item
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        store  query  string  true   "Almacén"
// @Param        item   query  string  true   "Nombre del item"
// @Param        days   query  int     false  "Ventana en días (default 30)"
// @Success      200  {object}  dto.ConsumptionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stats/consumption [get]
func (h *HistoryHandler) Consumption(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	resp, err := h.stats.Consumption(c.Context(), c.Query("store"), c.Query("item"), days)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// Clear godoc
// @Summary      Vaciar el historial completo (solo admin)
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/history [delete]
func (h *HistoryHandler) Clear(c *fiber.Ctx) error {
	if err := h.history.Clear(); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "historial vaciado"})
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
