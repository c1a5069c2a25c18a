package http

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/query"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ItemHandler expone el motor de mutaciones y la fachada de consultas del
// inventario. Todas las mutaciones registran como actor el email del token.
type ItemHandler struct {
	engine     *inventory.MovementUseCase
	queries    *query.QueryUseCase
	categories *usecase.CategoryUseCase
}

// NewItemHandler construye el handler de items.
func NewItemHandler(engine *inventory.MovementUseCase, queries *query.QueryUseCase, categories *usecase.CategoryUseCase) *ItemHandler {
	return &ItemHandler{engine: engine, queries: queries, categories: categories}
}

// List godoc
// @Summary      Listar items
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        store      query  string  false  "Filtrar por almacén"
// @Param        category   query  string  false  "Filtrar por categoría"
// @Param        low_stock  query  bool    false  "Solo items bajo umbral"
// @Success      200  {array}   dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	filter := repository.ItemFilter{
		StoreID:      c.Query("store"),
		CategoryID:   c.Query("category"),
		LowStockOnly: c.QueryBool("low_stock"),
	}
	items, err := h.queries.ListItems(c.Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]*dto.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ToItemResponse(item))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Consultar un item
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{store}/items/{name} [get]
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	storeID, name := pathKey(c)
	item, err := h.queries.GetItem(c.Context(), storeID, name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.ToItemResponse(item))
}

// Set godoc
// @Summary      Crear o reinventariar un item (reemplazo absoluto)
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetItemRequest  true  "quantity, unit, threshold, category"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stores/{store}/items/{name} [put]
func (h *ItemHandler) Set(c *fiber.Ctx) error {
	storeID, name := pathKey(c)
	var in dto.SetItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	categoryID := ""
	if in.Category != "" {
		category, err := h.categories.Ensure(c.Context(), in.Category)
		if err != nil {
			return errorResponse(c, err)
		}
		categoryID = category.ID
	}
	item, err := h.engine.CreateOrSet(c.Context(), inventory.CreateOrSetInput{
		StoreID:    storeID,
		Name:       name,
		Quantity:   in.Quantity,
		Unit:       in.Unit,
		Threshold:  in.Threshold,
		CategoryID: categoryID,
		Actor:      GetEmail(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.ToItemResponse(item))
}

// StockIn godoc
// @Summary      Entrada de stock
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "delta > 0"
// @Success      200   {object}  dto.ItemResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stores/{store}/items/{name}/in [post]
func (h *ItemHandler) StockIn(c *fiber.Ctx) error {
	return h.movement(c, h.engine.StockIn)
}

// StockOut godoc
// @Summary      Salida de stock
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "delta > 0"
// @Success      200   {object}  dto.ItemResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stores/{store}/items/{name}/out [post]
func (h *ItemHandler) StockOut(c *fiber.Ctx) error {
	return h.movement(c, h.engine.StockOut)
}

// Adjust godoc
// @Summary      Ajuste con signo (positivo entrada, negativo salida)
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "delta con signo, != 0"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stores/{store}/items/{name}/adjust [post]
func (h *ItemHandler) Adjust(c *fiber.Ctx) error {
	return h.movement(c, h.engine.AdjustQuantity)
}

// Transfer godoc
// @Summary      Transferir stock entre almacenes
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "source_store_id, target_store_id, delta"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{name}/transfer [post]
func (h *ItemHandler) Transfer(c *fiber.Ctx) error {
	name := unescape(c.Params("name"))
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	source, target, err := h.engine.Transfer(c.Context(), inventory.TransferInput{
		Name:          name,
		SourceStoreID: in.SourceStoreID,
		TargetStoreID: in.TargetStoreID,
		Delta:         in.Delta,
		Actor:         GetEmail(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.TransferResponse{
		Source: *dto.ToItemResponse(source),
		Target: *dto.ToItemResponse(target),
	})
}

// Delete godoc
// @Summary      Eliminar un item (su historial se conserva)
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{store}/items/{name} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	storeID, name := pathKey(c)
	err := h.engine.Delete(c.Context(), inventory.DeleteInput{
		StoreID: storeID,
		Name:    name,
		Actor:   GetEmail(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "item eliminado"})
}

func (h *ItemHandler) movement(c *fiber.Ctx, op func(ctx context.Context, in inventory.MovementInput) (*entity.Item, error)) error {
	storeID, name := pathKey(c)
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := op(c.Context(), inventory.MovementInput{
		StoreID: storeID,
		Name:    name,
		Delta:   in.Delta,
		Actor:   GetEmail(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.ToItemResponse(item))
}

func pathKey(c *fiber.Ctx) (storeID, name string) {
	return unescape(c.Params("store")), unescape(c.Params("name"))
}

func unescape(v string) string {
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
