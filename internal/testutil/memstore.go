// Package testutil provee un store en memoria con semántica transaccional
// (snapshot + rollback) que implementa los contratos de repositorio. Solo se usa
// desde tests: permite ejercitar el motor de mutaciones sin PostgreSQL.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// MemStore guarda el estado compartido. Las vistas Items(), History(), Stores(),
// Categories() y Users() implementan los contratos de repositorio sobre él.
// Run serializa las transacciones con un mutex global y restaura un snapshot si
// el callback falla, imitando el commit/rollback de PostgreSQL.
type MemStore struct {
	txMu sync.Mutex // serializa transacciones (equivale al bloqueo de fila)
	mu   sync.Mutex // protege los mapas

	items      map[string]*entity.Item
	entries    []*entity.HistoryEntry
	stores     map[string]*entity.Store
	categories map[string]*entity.Category
	users      map[string]*entity.User

	// AppendErr fuerza el error devuelto por History().Append; permite probar que
	// un fallo al escribir historial revierte también el cambio de estado.
	AppendErr error
}

// NewMemStore crea el store con el almacén default y la categoría uncategorized
// ya sembrados, igual que la migración inicial.
func NewMemStore() *MemStore {
	now := time.Now().UTC()
	return &MemStore{
		items: make(map[string]*entity.Item),
		stores: map[string]*entity.Store{
			entity.DefaultStoreID: {ID: entity.DefaultStoreID, Name: "Almacén principal", CreatedAt: now},
		},
		categories: map[string]*entity.Category{
			entity.UncategorizedID: {ID: entity.UncategorizedID, Name: "Sin categoría", CreatedAt: now},
		},
		users: make(map[string]*entity.User),
	}
}

// Vistas de repositorio.
func (m *MemStore) Items() repository.ItemRepository          { return itemsView{m} }
func (m *MemStore) History() repository.HistoryRepository     { return historyView{m} }
func (m *MemStore) Stores() repository.StoreRepository        { return storesView{m} }
func (m *MemStore) Categories() repository.CategoryRepository { return categoriesView{m} }
func (m *MemStore) Users() repository.UserRepository          { return usersView{m} }

func itemKey(storeID, name string) string { return storeID + "\x00" + name }

func copyItem(i *entity.Item) *entity.Item {
	if i == nil {
		return nil
	}
	c := *i
	c.Threshold = copyInt64(i.Threshold)
	c.LastIn = copyTime(i.LastIn)
	c.LastInDelta = copyInt64(i.LastInDelta)
	c.LastOut = copyTime(i.LastOut)
	c.LastOutDelta = copyInt64(i.LastOutDelta)
	return &c
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// Run ejecuta fn de forma serializada; si fn falla restaura el estado previo.
func (m *MemStore) Run(_ context.Context, fn func(
	items repository.ItemRepository,
	history repository.HistoryRepository,
) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	snapItems, snapLen := m.snapshot()
	if err := fn(itemsView{m}, historyView{m}); err != nil {
		m.restore(snapItems, snapLen)
		return err
	}
	return nil
}

// RunCatalog igual que Run pero con los repositorios de catálogo incluidos.
func (m *MemStore) RunCatalog(_ context.Context, fn func(
	stores repository.StoreRepository,
	categories repository.CategoryRepository,
	items repository.ItemRepository,
	history repository.HistoryRepository,
) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	snapItems, snapLen := m.snapshot()
	m.mu.Lock()
	snapStores := make(map[string]*entity.Store, len(m.stores))
	for k, v := range m.stores {
		c := *v
		snapStores[k] = &c
	}
	snapCategories := make(map[string]*entity.Category, len(m.categories))
	for k, v := range m.categories {
		c := *v
		snapCategories[k] = &c
	}
	m.mu.Unlock()
	if err := fn(storesView{m}, categoriesView{m}, itemsView{m}, historyView{m}); err != nil {
		m.restore(snapItems, snapLen)
		m.mu.Lock()
		m.stores = snapStores
		m.categories = snapCategories
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemStore) snapshot() (map[string]*entity.Item, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]*entity.Item, len(m.items))
	for k, v := range m.items {
		snap[k] = copyItem(v)
	}
	return snap, len(m.entries)
}

func (m *MemStore) restore(items map[string]*entity.Item, entriesLen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	m.entries = m.entries[:entriesLen]
}

// Entries devuelve una copia del historial completo en orden de inserción.
func (m *MemStore) Entries() []*entity.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.HistoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		c := *e
		out = append(out, &c)
	}
	return out
}

// ── ItemRepository ────────────────────────────────────────────────────────────

type itemsView struct{ m *MemStore }

func (v itemsView) Get(storeID, name string) (*entity.Item, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return copyItem(v.m.items[itemKey(storeID, name)]), nil
}

func (v itemsView) GetForUpdate(storeID, name string) (*entity.Item, error) {
	return v.Get(storeID, name)
}

func (v itemsView) LockKey(_, _ string) error { return nil }

func (v itemsView) Upsert(item *entity.Item) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.m.items[itemKey(item.StoreID, item.Name)] = copyItem(item)
	return nil
}

func (v itemsView) Delete(storeID, name string) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	delete(v.m.items, itemKey(storeID, name))
	return nil
}

func (v itemsView) List(filter repository.ItemFilter) ([]*entity.Item, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	var out []*entity.Item
	for _, item := range v.m.items {
		if filter.StoreID != "" && item.StoreID != filter.StoreID {
			continue
		}
		if filter.CategoryID != "" && item.CategoryID != filter.CategoryID {
			continue
		}
		if filter.LowStockOnly && !item.LowStock() {
			continue
		}
		out = append(out, copyItem(item))
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].StoreID != out[b].StoreID {
			return out[a].StoreID < out[b].StoreID
		}
		return out[a].Name < out[b].Name
	})
	return out, nil
}

// ── HistoryRepository ─────────────────────────────────────────────────────────

type historyView struct{ m *MemStore }

func (v historyView) Append(entry *entity.HistoryEntry) error {
	if v.m.AppendErr != nil {
		return v.m.AppendErr
	}
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	e := *entry
	v.m.entries = append(v.m.entries, &e)
	return nil
}

func (v historyView) List(filter repository.HistoryFilter) ([]*entity.HistoryEntry, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	var out []*entity.HistoryEntry
	for _, e := range v.m.entries {
		if filter.StoreID != "" && e.StoreID != filter.StoreID {
			continue
		}
		if filter.ItemName != "" && e.ItemName != filter.ItemName {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && e.Timestamp.After(*filter.Until) {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Timestamp.Before(out[b].Timestamp) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (v historyView) Aggregate(storeID, mode string, start, end time.Time) ([]repository.AggregateBucket, error) {
	if mode != repository.AggregateByDay && mode != repository.AggregateByMonth {
		return nil, domain.ErrInvalidInput
	}
	entries, err := v.List(repository.HistoryFilter{StoreID: storeID, Since: &start, Until: &end})
	if err != nil {
		return nil, err
	}
	byBucket := make(map[time.Time]*repository.AggregateBucket)
	for _, e := range entries {
		delta, direction := entryFlow(e)
		if delta == 0 {
			continue
		}
		b := truncateBucket(e.Timestamp, mode)
		agg := byBucket[b]
		if agg == nil {
			agg = &repository.AggregateBucket{Bucket: b}
			byBucket[b] = agg
		}
		if direction > 0 {
			agg.InTotal += delta
		} else {
			agg.OutTotal += delta
		}
		agg.Net = agg.InTotal - agg.OutTotal
	}
	out := make([]repository.AggregateBucket, 0, len(byBucket))
	for _, agg := range byBucket {
		out = append(out, *agg)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Bucket.Before(out[b].Bucket) })
	return out, nil
}

func (v historyView) Clear() error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.m.entries = nil
	return nil
}

// entryFlow devuelve el delta absoluto y la dirección (+1 entrada, -1 salida) de
// un asiento; 0 si el asiento no mueve cantidad (create, delete).
func entryFlow(e *entity.HistoryEntry) (int64, int) {
	delta := metaInt64(e.Meta, "delta")
	switch e.Action {
	case entity.ActionIn:
		return delta, 1
	case entity.ActionOut:
		return delta, -1
	case entity.ActionTransfer:
		if dir, _ := e.Meta["direction"].(string); dir == entity.TransferDirectionIn {
			return delta, 1
		}
		return delta, -1
	case entity.ActionAdjust:
		if delta >= 0 {
			return delta, 1
		}
		return -delta, -1
	default:
		return 0, 0
	}
}

func metaInt64(meta map[string]any, key string) int64 {
	switch v := meta[key].(type) {
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

func truncateBucket(ts time.Time, mode string) time.Time {
	if mode == repository.AggregateByMonth {
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

// ── StoreRepository ───────────────────────────────────────────────────────────

type storesView struct{ m *MemStore }

func (v storesView) GetByID(id string) (*entity.Store, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	s := v.m.stores[id]
	if s == nil {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (v storesView) GetByName(name string) (*entity.Store, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	for _, s := range v.m.stores {
		if s.Name == name {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (v storesView) List() ([]*entity.Store, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	out := make([]*entity.Store, 0, len(v.m.stores))
	for _, s := range v.m.stores {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (v storesView) Create(store *entity.Store) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if _, ok := v.m.stores[store.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *store
	v.m.stores[store.ID] = &c
	return nil
}

func (v storesView) Delete(id string) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	delete(v.m.stores, id)
	for k := range v.m.items {
		if strings.HasPrefix(k, id+"\x00") {
			delete(v.m.items, k)
		}
	}
	return nil
}

func (v storesView) Count() (int, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return len(v.m.stores), nil
}

func (v storesView) CountItems(id string) (int, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	n := 0
	for k := range v.m.items {
		if strings.HasPrefix(k, id+"\x00") {
			n++
		}
	}
	return n, nil
}

// ── CategoryRepository ────────────────────────────────────────────────────────

type categoriesView struct{ m *MemStore }

func (v categoriesView) GetByID(id string) (*entity.Category, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	c := v.m.categories[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (v categoriesView) GetByName(name string) (*entity.Category, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	for _, c := range v.m.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (v categoriesView) List() ([]*entity.Category, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	out := make([]*entity.Category, 0, len(v.m.categories))
	for _, c := range v.m.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (v categoriesView) Create(category *entity.Category) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if _, ok := v.m.categories[category.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *category
	v.m.categories[category.ID] = &c
	return nil
}

func (v categoriesView) Delete(id string) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	delete(v.m.categories, id)
	return nil
}

func (v categoriesView) CountReferences(id string) (int, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	n := 0
	for _, item := range v.m.items {
		if item.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (v categoriesView) ClearReferences(id string) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	for _, item := range v.m.items {
		if item.CategoryID == id {
			item.CategoryID = entity.UncategorizedID
		}
	}
	return nil
}

// ── UserRepository ────────────────────────────────────────────────────────────

type usersView struct{ m *MemStore }

func (v usersView) Create(user *entity.User) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	c := *user
	v.m.users[user.ID] = &c
	return nil
}

func (v usersView) FindByEmail(email string) (*entity.User, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	for _, u := range v.m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (v usersView) GetByID(id string) (*entity.User, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	u := v.m.users[id]
	if u == nil {
		return nil, nil
	}
	c := *u
	return &c, nil
}
