package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// StoreHandler maneja el catálogo de almacenes.
type StoreHandler struct {
	uc *usecase.StoreUseCase
}

// NewStoreHandler construye el handler de almacenes.
func NewStoreHandler(uc *usecase.StoreUseCase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

// Create godoc
// @Summary      Crear almacén
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStoreRequest  true  "name"
// @Success      201   {object}  dto.StoreResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stores [post]
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStoreRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	store, err := h.uc.Create(c.Context(), in.Name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.toResponse(store, 0))
}

// List godoc
// @Summary      Listar almacenes
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StoreResponse
// @Router       /api/stores [get]
func (h *StoreHandler) List(c *fiber.Ctx) error {
	stores, err := h.uc.List(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.StoreResponse, 0, len(stores))
	for _, s := range stores {
		count, err := h.uc.CountItems(c.Context(), s.ID)
		if err != nil {
			return errorResponse(c, err)
		}
		out = append(out, h.toResponse(s, count))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Consultar almacén
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StoreResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{id} [get]
func (h *StoreHandler) Get(c *fiber.Ctx) error {
	store, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	count, err := h.uc.CountItems(c.Context(), store.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(h.toResponse(store, count))
}

// Delete godoc
// @Summary      Eliminar almacén (solo admin)
// @Description  Con cascade=true elimina también sus items, dejando un asiento
//               "delete" por cada uno. Sin cascade y con items, la operación se
//               rechaza. El último almacén no se puede eliminar.
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Param        cascade  query  bool  false  "Eliminar también los items"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stores/{id} [delete]
func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	err := h.uc.Delete(c.Context(), c.Params("id"), c.QueryBool("cascade"), GetEmail(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "almacén eliminado"})
}

func (h *StoreHandler) toResponse(s *entity.Store, itemsCount int) dto.StoreResponse {
	return dto.StoreResponse{
		ID:         s.ID,
		Name:       s.Name,
		CreatedAt:  s.CreatedAt,
		ItemsCount: itemsCount,
	}
}
