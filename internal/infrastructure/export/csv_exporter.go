package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
)

// CSVExporter genera el reporte de inventario como CSV plano.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter { return &CSVExporter{} }

// Export escribe las filas con el mismo orden de columnas que el XLSX.
func (e *CSVExporter) Export(rows []dto.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"store", "item", "quantity", "unit", "threshold", "low_stock",
		"category", "created_at", "last_in", "last_out",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("csv: encabezado: %w", err)
	}
	for _, r := range rows {
		threshold := ""
		if r.Threshold != nil {
			threshold = strconv.FormatInt(*r.Threshold, 10)
		}
		record := []string{
			r.StoreName, r.Name, strconv.FormatInt(r.Quantity, 10), r.Unit,
			threshold, strconv.FormatBool(r.LowStock),
			r.CategoryName, formatDate(&r.CreatedAt), formatDate(r.LastIn), formatDate(r.LastOut),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv: fila: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
