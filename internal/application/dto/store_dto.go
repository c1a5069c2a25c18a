package dto

import "time"

// CreateStoreRequest cuerpo de POST /api/stores.
type CreateStoreRequest struct {
	Name string `json:"name"`
}

// StoreResponse representación de un almacén.
type StoreResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ItemsCount int       `json:"items_count"`
}

// CreateCategoryRequest cuerpo de POST /api/categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse representación de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
