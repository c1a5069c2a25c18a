package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementación de HistoryRepository sobre PostgreSQL (usable con
// pool o tx). La tabla es append-only: no hay UPDATE ni DELETE por fila.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador del historial. Pasar pool o tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// Append persiste un asiento del historial. El meta va como jsonb.
func (r *HistoryRepo) Append(entry *entity.HistoryEntry) error {
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	query := `
		INSERT INTO history_entries (id, transaction_id, ts, action, item_name, store_id, actor, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(context.Background(), query,
		entry.ID, entry.TransactionID, entry.Timestamp, entry.Action,
		entry.ItemName, entry.StoreID, entry.Actor, meta,
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// List lista asientos según el filtro, en orden cronológico ascendente.
func (r *HistoryRepo) List(filter repository.HistoryFilter) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT id, transaction_id, ts, action, item_name, store_id, actor, meta
		FROM history_entries WHERE 1=1`
	args := []any{}
	pos := 1
	add := func(cond string, val any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, val)
		pos++
	}
	if filter.StoreID != "" {
		add("store_id = $%d", filter.StoreID)
	}
	if filter.ItemName != "" {
		add("item_name = $%d", filter.ItemName)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.Since != nil {
		add("ts >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		add("ts <= $%d", *filter.Until)
	}
	query += " ORDER BY ts, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, filter.Limit)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.Timestamp, &e.Action,
			&e.ItemName, &e.StoreID, &e.Actor, &meta); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal meta: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Aggregate totaliza entradas y salidas por periodo con date_trunc. Las
// transferencias cuentan según su dirección y los adjust según el signo del
// delta; create y delete no mueven cantidad y quedan fuera.
func (r *HistoryRepo) Aggregate(storeID, mode string, start, end time.Time) ([]repository.AggregateBucket, error) {
	query := `
		SELECT date_trunc($1, ts) AS bucket,
			COALESCE(SUM(CASE
				WHEN action = 'in'
					OR (action = 'transfer' AND meta->>'direction' = 'in')
					OR (action = 'adjust' AND (meta->>'delta')::bigint > 0)
				THEN abs((meta->>'delta')::bigint) ELSE 0 END), 0) AS in_total,
			COALESCE(SUM(CASE
				WHEN action = 'out'
					OR (action = 'transfer' AND meta->>'direction' = 'out')
					OR (action = 'adjust' AND (meta->>'delta')::bigint < 0)
				THEN abs((meta->>'delta')::bigint) ELSE 0 END), 0) AS out_total
		FROM history_entries
		WHERE ts >= $2 AND ts <= $3
			AND action IN ('in', 'out', 'transfer', 'adjust')`
	args := []any{mode, start, end}
	if storeID != "" {
		query += " AND store_id = $4"
		args = append(args, storeID)
	}
	query += " GROUP BY bucket ORDER BY bucket"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate history: %w", err)
	}
	defer rows.Close()

	var buckets []repository.AggregateBucket
	for rows.Next() {
		var b repository.AggregateBucket
		if err := rows.Scan(&b.Bucket, &b.InTotal, &b.OutTotal); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		b.Net = b.InTotal - b.OutTotal
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Clear vacía el historial completo. Operación administrativa.
func (r *HistoryRepo) Clear() error {
	_, err := r.q.Exec(context.Background(), `TRUNCATE history_entries`)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
