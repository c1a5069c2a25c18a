package dto

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// SetItemRequest cuerpo de PUT /api/items/:name (crear o reinventariar).
// Quantity es el valor absoluto resultante, no un delta.
type SetItemRequest struct {
	StoreID   string `json:"store_id"`
	Quantity  int64  `json:"quantity"`
	Unit      string `json:"unit"`
	Threshold *int64 `json:"threshold"`
	Category  string `json:"category"` // id o nombre; vacío = sin categoría
}

// MovementRequest cuerpo de POST .../in, /out y /adjust. En in/out Delta es
// siempre positivo; en adjust lleva signo y cero se rechaza.
type MovementRequest struct {
	StoreID string `json:"store_id"`
	Delta   int64  `json:"delta"`
}

// TransferRequest cuerpo de POST /api/items/:name/transfer.
type TransferRequest struct {
	SourceStoreID string `json:"source_store_id"`
	TargetStoreID string `json:"target_store_id"`
	Delta         int64  `json:"delta"`
}

// ItemResponse representación de un item en respuestas.
type ItemResponse struct {
	StoreID         string     `json:"store_id"`
	Name            string     `json:"name"`
	Quantity        int64      `json:"quantity"`
	Unit            string     `json:"unit"`
	Threshold       *int64     `json:"threshold"`
	CategoryID      string     `json:"category_id"`
	LowStock        bool       `json:"low_stock"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedQuantity int64      `json:"created_quantity"`
	LastIn          *time.Time `json:"last_in"`
	LastInDelta     *int64     `json:"last_in_delta"`
	LastOut         *time.Time `json:"last_out"`
	LastOutDelta    *int64     `json:"last_out_delta"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TransferResponse ambos lados de una transferencia confirmada.
type TransferResponse struct {
	Source ItemResponse `json:"source"`
	Target ItemResponse `json:"target"`
}

// ToItemResponse convierte la entidad de dominio a DTO.
func ToItemResponse(i *entity.Item) *ItemResponse {
	if i == nil {
		return nil
	}
	return &ItemResponse{
		StoreID:         i.StoreID,
		Name:            i.Name,
		Quantity:        i.Quantity,
		Unit:            i.Unit,
		Threshold:       i.Threshold,
		CategoryID:      i.CategoryID,
		LowStock:        i.LowStock(),
		CreatedAt:       i.CreatedAt,
		CreatedQuantity: i.CreatedQuantity,
		LastIn:          i.LastIn,
		LastInDelta:     i.LastInDelta,
		LastOut:         i.LastOut,
		LastOutDelta:    i.LastOutDelta,
		UpdatedAt:       i.UpdatedAt,
	}
}
