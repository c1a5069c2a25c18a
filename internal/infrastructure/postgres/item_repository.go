package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `store_id, name, quantity, unit, threshold, category_id,
	created_at, created_quantity, last_in, last_in_delta, last_out, last_out_delta, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Get obtiene el registro actual de un item; nil si la clave no existe.
func (r *ItemRepo) Get(storeID, name string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE store_id = $1 AND name = $2`
	return r.scanOne(query, storeID, name)
}

// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE) dentro de
// la transacción activa.
func (r *ItemRepo) GetForUpdate(storeID, name string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE store_id = $1 AND name = $2 FOR UPDATE`
	return r.scanOne(query, storeID, name)
}

// LockKey toma un advisory lock de alcance transacción sobre la clave. Cubre la
// carrera de dos creates concurrentes, donde aún no hay fila que bloquear.
func (r *ItemRepo) LockKey(storeID, name string) error {
	_, err := r.q.Exec(context.Background(),
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 42))`,
		storeID+"/"+name,
	)
	if err != nil {
		return fmt.Errorf("lock key: %w", err)
	}
	return nil
}

// Upsert inserta o reemplaza el registro del item.
func (r *ItemRepo) Upsert(item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (store_id, name) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			unit = EXCLUDED.unit,
			threshold = EXCLUDED.threshold,
			category_id = EXCLUDED.category_id,
			last_in = EXCLUDED.last_in,
			last_in_delta = EXCLUDED.last_in_delta,
			last_out = EXCLUDED.last_out,
			last_out_delta = EXCLUDED.last_out_delta,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		item.StoreID, item.Name, item.Quantity, item.Unit, item.Threshold, item.CategoryID,
		item.CreatedAt, item.CreatedQuantity,
		item.LastIn, item.LastInDelta, item.LastOut, item.LastOutDelta, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// Delete elimina el registro del item.
func (r *ItemRepo) Delete(storeID, name string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM items WHERE store_id = $1 AND name = $2`, storeID, name)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// List lista items según el filtro, ordenados por almacén y nombre.
func (r *ItemRepo) List(filter repository.ItemFilter) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.StoreID != "" {
		query += fmt.Sprintf(" AND store_id = $%d", pos)
		args = append(args, filter.StoreID)
		pos++
	}
	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", pos)
		args = append(args, filter.CategoryID)
		pos++
	}
	if filter.LowStockOnly {
		query += " AND threshold IS NOT NULL AND quantity < threshold"
	}
	query += " ORDER BY store_id, name"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepo) scanOne(query string, args ...any) (*entity.Item, error) {
	row := r.q.QueryRow(context.Background(), query, args...)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var i entity.Item
	err := row.Scan(
		&i.StoreID, &i.Name, &i.Quantity, &i.Unit, &i.Threshold, &i.CategoryID,
		&i.CreatedAt, &i.CreatedQuantity,
		&i.LastIn, &i.LastInDelta, &i.LastOut, &i.LastOutDelta, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
