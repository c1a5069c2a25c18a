package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// MovementUseCase es el motor de mutaciones del inventario. Aplica operaciones
// sobre una clave (almacén, nombre) dentro de una transacción con bloqueo de fila
// (SELECT FOR UPDATE) y registra exactamente un asiento de historial por mutación
// confirmada (dos correlacionados en transferencias). Una operación rechazada no
// toca ni el estado ni el historial.
type MovementUseCase struct {
	txRunner     TxRunner
	storeRepo    repository.StoreRepository
	categoryRepo repository.CategoryRepository
}

// NewMovementUseCase construye el motor.
func NewMovementUseCase(
	txRunner TxRunner,
	storeRepo repository.StoreRepository,
	categoryRepo repository.CategoryRepository,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:     txRunner,
		storeRepo:    storeRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateOrSetInput entrada para crear o reinventariar un item. Quantity es el
// valor absoluto resultante (recuento), no un delta.
type CreateOrSetInput struct {
	StoreID    string
	Name       string
	Quantity   int64
	Unit       string
	Threshold  *int64
	CategoryID string // id ya resuelto; vacío = uncategorized
	Actor      string
}

// MovementInput entrada para StockIn/StockOut. Delta siempre positivo.
type MovementInput struct {
	StoreID string
	Name    string
	Delta   int64
	Actor   string
}

// TransferInput entrada para Transfer entre dos almacenes.
type TransferInput struct {
	Name          string
	SourceStoreID string
	TargetStoreID string
	Delta         int64
	Actor         string
}

// DeleteInput entrada para eliminar un item del ledger.
type DeleteInput struct {
	StoreID string
	Name    string
	Actor   string
}

// CreateOrSet crea el item si la clave no existe (asiento "create") o reemplaza
// por completo quantity/unit/threshold/category si existe (asiento "adjust"),
// preservando created_at y created_quantity. No es un merge: quien quiera un
// cambio incremental debe usar StockIn/StockOut.
func (uc *MovementUseCase) CreateOrSet(ctx context.Context, in CreateOrSetInput) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Threshold != nil && *in.Threshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	categoryID := in.CategoryID
	if categoryID == "" {
		categoryID = entity.UncategorizedID
	}
	if err := uc.validateRefs(in.StoreID, categoryID); err != nil {
		return nil, err
	}

	var result *entity.Item
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, history repository.HistoryRepository) error {
		// Advisory lock: dos creates concurrentes de la misma clave no tienen
		// todavía fila que bloquear con FOR UPDATE.
		if err := items.LockKey(in.StoreID, name); err != nil {
			return err
		}
		current, err := items.GetForUpdate(in.StoreID, name)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		txID := uuid.New().String()
		unit := strings.TrimSpace(in.Unit)

		if current == nil {
			item := &entity.Item{
				StoreID:         in.StoreID,
				Name:            name,
				Quantity:        in.Quantity,
				Unit:            unit,
				Threshold:       in.Threshold,
				CategoryID:      categoryID,
				CreatedAt:       now,
				CreatedQuantity: in.Quantity,
				UpdatedAt:       now,
			}
			if err := items.Upsert(item); err != nil {
				return err
			}
			entry := newEntry(txID, now, entity.ActionCreate, name, in.StoreID, in.Actor, map[string]any{
				"quantity": in.Quantity,
				"unit":     unit,
			})
			if err := history.Append(entry); err != nil {
				return err
			}
			result = item
			return nil
		}

		previous := current.Quantity
		delta := in.Quantity - previous
		current.Quantity = in.Quantity
		current.Unit = unit
		current.Threshold = in.Threshold
		current.CategoryID = categoryID
		current.UpdatedAt = now
		switch {
		case delta > 0:
			d := delta
			current.LastIn, current.LastInDelta = &now, &d
		case delta < 0:
			d := -delta
			current.LastOut, current.LastOutDelta = &now, &d
		}
		if err := items.Upsert(current); err != nil {
			return err
		}
		entry := newEntry(txID, now, entity.ActionAdjust, name, in.StoreID, in.Actor, map[string]any{
			"previous_quantity": previous,
			"new_quantity":      in.Quantity,
			"delta":             delta,
			"unit":              unit,
		})
		if err := history.Append(entry); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StockIn suma Delta (> 0) a un item existente y actualiza last_in/last_in_delta.
func (uc *MovementUseCase) StockIn(ctx context.Context, in MovementInput) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if in.Delta <= 0 || name == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Item
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, history repository.HistoryRepository) error {
		item, err := items.GetForUpdate(in.StoreID, name)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		now := time.Now().UTC()
		previous := item.Quantity
		item.Quantity = previous + in.Delta
		d := in.Delta
		item.LastIn, item.LastInDelta = &now, &d
		item.UpdatedAt = now
		if err := items.Upsert(item); err != nil {
			return err
		}
		entry := newEntry(uuid.New().String(), now, entity.ActionIn, item.Name, in.StoreID, in.Actor, map[string]any{
			"delta":             in.Delta,
			"previous_quantity": previous,
			"new_quantity":      item.Quantity,
			"unit":              item.Unit,
		})
		if err := history.Append(entry); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StockOut resta Delta (> 0) de un item existente. Si Delta excede la cantidad
// actual, la operación se rechaza completa con ErrInsufficientStock: ni el
// estado ni el historial cambian. Delta == Quantity es legal y deja el item en 0.
func (uc *MovementUseCase) StockOut(ctx context.Context, in MovementInput) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if in.Delta <= 0 || name == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Item
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, history repository.HistoryRepository) error {
		item, err := items.GetForUpdate(in.StoreID, name)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if in.Delta > item.Quantity {
			return domain.ErrInsufficientStock
		}
		now := time.Now().UTC()
		previous := item.Quantity
		item.Quantity = previous - in.Delta
		d := in.Delta
		item.LastOut, item.LastOutDelta = &now, &d
		item.UpdatedAt = now
		if err := items.Upsert(item); err != nil {
			return err
		}
		entry := newEntry(uuid.New().String(), now, entity.ActionOut, item.Name, in.StoreID, in.Actor, map[string]any{
			"delta":             in.Delta,
			"previous_quantity": previous,
			"new_quantity":      item.Quantity,
			"unit":              item.Unit,
		})
		if err := history.Append(entry); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustQuantity aplica un delta con signo: positivo como entrada, negativo como
// salida. Cero se rechaza como entrada inválida para mantener el historial con
// significado (no hay asientos vacíos).
func (uc *MovementUseCase) AdjustQuantity(ctx context.Context, in MovementInput) (*entity.Item, error) {
	switch {
	case in.Delta > 0:
		return uc.StockIn(ctx, in)
	case in.Delta < 0:
		out := in
		out.Delta = -in.Delta
		return uc.StockOut(ctx, out)
	default:
		return nil, domain.ErrInvalidInput
	}
}

// Transfer mueve Delta unidades de un almacén a otro en una sola transacción:
// o ambos lados se confirman o ninguno. El item destino se crea si no existía,
// heredando unidad, categoría y umbral del origen. Registra DOS asientos
// "transfer" (uno por lado) correlacionados por el mismo transaction_id.
func (uc *MovementUseCase) Transfer(ctx context.Context, in TransferInput) (source, target *entity.Item, err error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Delta <= 0 || in.SourceStoreID == in.TargetStoreID {
		return nil, nil, domain.ErrInvalidInput
	}
	if err := uc.validateStores(in.SourceStoreID, in.TargetStoreID); err != nil {
		return nil, nil, err
	}

	err = uc.txRunner.Run(ctx, func(items repository.ItemRepository, history repository.HistoryRepository) error {
		// Bloquear ambas claves en orden determinista para evitar deadlocks
		// entre transferencias cruzadas A→B y B→A.
		first, second := in.SourceStoreID, in.TargetStoreID
		if second < first {
			first, second = second, first
		}
		if err := items.LockKey(first, name); err != nil {
			return err
		}
		if err := items.LockKey(second, name); err != nil {
			return err
		}

		src, err := items.GetForUpdate(in.SourceStoreID, name)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.ErrNotFound
		}
		if in.Delta > src.Quantity {
			return domain.ErrInsufficientStock
		}
		dst, err := items.GetForUpdate(in.TargetStoreID, name)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		txID := uuid.New().String()
		d := in.Delta

		srcPrevious := src.Quantity
		src.Quantity = srcPrevious - in.Delta
		src.LastOut, src.LastOutDelta = &now, &d
		src.UpdatedAt = now

		var dstPrevious int64
		if dst == nil {
			dst = &entity.Item{
				StoreID:         in.TargetStoreID,
				Name:            name,
				Quantity:        in.Delta,
				Unit:            src.Unit,
				Threshold:       src.Threshold,
				CategoryID:      src.CategoryID,
				CreatedAt:       now,
				CreatedQuantity: in.Delta,
			}
		} else {
			dstPrevious = dst.Quantity
			dst.Quantity = dstPrevious + in.Delta
			if dst.Unit == "" {
				dst.Unit = src.Unit
			}
			if dst.Threshold == nil {
				dst.Threshold = src.Threshold
			}
		}
		dst.LastIn, dst.LastInDelta = &now, &d
		dst.UpdatedAt = now

		if err := items.Upsert(src); err != nil {
			return err
		}
		if err := items.Upsert(dst); err != nil {
			return err
		}

		outEntry := newEntry(txID, now, entity.ActionTransfer, name, in.SourceStoreID, in.Actor, map[string]any{
			"direction":         entity.TransferDirectionOut,
			"delta":             in.Delta,
			"previous_quantity": srcPrevious,
			"new_quantity":      src.Quantity,
			"unit":              src.Unit,
			"source_location":   in.SourceStoreID,
			"target_location":   in.TargetStoreID,
		})
		if err := history.Append(outEntry); err != nil {
			return err
		}
		inEntry := newEntry(txID, now, entity.ActionTransfer, name, in.TargetStoreID, in.Actor, map[string]any{
			"direction":         entity.TransferDirectionIn,
			"delta":             in.Delta,
			"previous_quantity": dstPrevious,
			"new_quantity":      dst.Quantity,
			"unit":              dst.Unit,
			"source_location":   in.SourceStoreID,
			"target_location":   in.TargetStoreID,
		})
		if err := history.Append(inEntry); err != nil {
			return err
		}
		source, target = src, dst
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

// Delete elimina el registro actual del item y registra el asiento terminal
// "delete". El historial previo del item se conserva íntegro.
func (uc *MovementUseCase) Delete(ctx context.Context, in DeleteInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(items repository.ItemRepository, history repository.HistoryRepository) error {
		item, err := items.GetForUpdate(in.StoreID, name)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := items.Delete(in.StoreID, name); err != nil {
			return err
		}
		now := time.Now().UTC()
		entry := newEntry(uuid.New().String(), now, entity.ActionDelete, item.Name, in.StoreID, in.Actor, map[string]any{
			"previous_quantity": item.Quantity,
			"unit":              item.Unit,
		})
		return history.Append(entry)
	})
}

// validateRefs verifica que el almacén y la categoría existan.
func (uc *MovementUseCase) validateRefs(storeID, categoryID string) error {
	store, err := uc.storeRepo.GetByID(storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return domain.ErrNotFound
	}
	category, err := uc.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *MovementUseCase) validateStores(ids ...string) error {
	for _, id := range ids {
		store, err := uc.storeRepo.GetByID(id)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func newEntry(txID string, ts time.Time, action, name, storeID, actor string, meta map[string]any) *entity.HistoryEntry {
	return &entity.HistoryEntry{
		ID:            uuid.New().String(),
		TransactionID: txID,
		Timestamp:     ts,
		Action:        action,
		ItemName:      name,
		StoreID:       storeID,
		Actor:         actor,
		Meta:          meta,
	}
}
