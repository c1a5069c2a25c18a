// Package importer implementa la carga masiva de inventario desde JSON o XLSX.
// Cada fila pasa por el motor de mutaciones como un create_or_set normal, así
// que deja su asiento en el historial y respeta todas las validaciones; las
// filas inválidas se reportan con su motivo sin abortar el lote.
package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain"
)

type ImporterUseCase struct {
	engine     *inventory.MovementUseCase
	categories *usecase.CategoryUseCase
}

func NewImporterUseCase(engine *inventory.MovementUseCase, categories *usecase.CategoryUseCase) *ImporterUseCase {
	return &ImporterUseCase{engine: engine, categories: categories}
}

// ImportRows aplica un lote de filas sobre un almacén. Las categorías se
// resuelven por id o nombre y se crean si no existen. Devuelve cuántas filas
// entraron y el detalle de las rechazadas.
func (uc *ImporterUseCase) ImportRows(ctx context.Context, storeID string, rows []dto.ImportRow, actor string) (*dto.ImportResult, error) {
	result := &dto.ImportResult{}
	for i, row := range rows {
		if err := uc.importRow(ctx, storeID, row, actor); err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{
				Index:   i + 1,
				Name:    row.Name,
				Message: err.Error(),
			})
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (uc *ImporterUseCase) importRow(ctx context.Context, storeID string, row dto.ImportRow, actor string) error {
	categoryID := ""
	if strings.TrimSpace(row.Category) != "" {
		category, err := uc.categories.Ensure(ctx, row.Category)
		if err != nil {
			return err
		}
		categoryID = category.ID
	}
	_, err := uc.engine.CreateOrSet(ctx, inventory.CreateOrSetInput{
		StoreID:    storeID,
		Name:       row.Name,
		Quantity:   row.Quantity,
		Unit:       row.Unit,
		Threshold:  row.Threshold,
		CategoryID: categoryID,
		Actor:      actor,
	})
	return err
}

// Columnas esperadas en la primera hoja del XLSX, en este orden.
// La primera fila es el encabezado y se descarta.
const (
	colName = iota
	colQuantity
	colUnit
	colThreshold
	colCategory
)

// ImportXLSX lee la primera hoja de un libro XLSX y la aplica como lote.
func (uc *ImporterUseCase) ImportXLSX(ctx context.Context, storeID string, r io.Reader, actor string) (*dto.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx ilegible: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.ErrInvalidInput
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{}
	for i, cols := range cells {
		if i == 0 {
			continue // encabezado
		}
		row, err := parseXLSXRow(cols)
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{
				Index:   i,
				Name:    cell(cols, colName),
				Message: err.Error(),
			})
			continue
		}
		if err := uc.importRow(ctx, storeID, row, actor); err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{
				Index:   i,
				Name:    row.Name,
				Message: err.Error(),
			})
			continue
		}
		result.Imported++
	}
	return result, nil
}

func parseXLSXRow(cols []string) (dto.ImportRow, error) {
	row := dto.ImportRow{
		Name:     strings.TrimSpace(cell(cols, colName)),
		Unit:     strings.TrimSpace(cell(cols, colUnit)),
		Category: strings.TrimSpace(cell(cols, colCategory)),
	}
	qty := strings.TrimSpace(cell(cols, colQuantity))
	if qty == "" {
		return row, fmt.Errorf("cantidad vacía")
	}
	quantity, err := strconv.ParseInt(qty, 10, 64)
	if err != nil {
		return row, fmt.Errorf("cantidad inválida: %q", qty)
	}
	row.Quantity = quantity

	if raw := strings.TrimSpace(cell(cols, colThreshold)); raw != "" {
		threshold, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return row, fmt.Errorf("umbral inválido: %q", raw)
		}
		row.Threshold = &threshold
	}
	return row, nil
}

func cell(cols []string, idx int) string {
	if idx >= len(cols) {
		return ""
	}
	return cols[idx]
}
