// Package export genera los reportes descargables del inventario (XLSX, CSV y
// PDF) a partir de las filas planas que arma la fachada de consultas.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
)

var xlsxHeader = []any{
	"Almacén", "Item", "Cantidad", "Unidad", "Umbral", "Bajo stock",
	"Categoría", "Creado", "Última entrada", "Última salida",
}

// XLSXExporter genera el reporte de inventario como libro Excel.
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

// Export escribe una hoja "Inventario" con una fila por item.
func (e *XLSXExporter) Export(rows []dto.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventario"
	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := f.SetSheetRow(sheet, "A1", &xlsxHeader); err != nil {
		return nil, fmt.Errorf("xlsx: encabezado: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		fila := []any{
			r.StoreName, r.Name, r.Quantity, r.Unit,
			thresholdCell(r.Threshold), lowStockCell(r.LowStock),
			r.CategoryName, formatDate(&r.CreatedAt), formatDate(r.LastIn), formatDate(r.LastOut),
		}
		if err := f.SetSheetRow(sheet, cell, &fila); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheet, "A", "B", 22)
	_ = f.SetColWidth(sheet, "G", "J", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func thresholdCell(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

func lowStockCell(low bool) string {
	if low {
		return "SÍ"
	}
	return "NO"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}
