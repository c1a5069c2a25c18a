package export

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// PDFExporter genera el reporte de inventario como PDF usando Maroto v2.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter { return &PDFExporter{} }

// Export genera una página A4 con el resumen y la tabla de items. Los items en
// bajo stock se resaltan en rojo.
func (e *PDFExporter) Export(rows []dto.ExportRow, title string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, len(rows)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range rows {
		m.AddRows(itemRow(r))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(title string, total int) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d items", total), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Almacén", 2, align.Left),
		h("Item", 3, align.Left),
		h("Cant.", 1, align.Right),
		h("Unidad", 1, align.Left),
		h("Umbral", 1, align.Right),
		h("Categoría", 2, align.Left),
		h("Estado", 2, align.Center),
	)
}

func itemRow(r dto.ExportRow) core.Row {
	threshold := "—"
	if r.Threshold != nil {
		threshold = strconv.FormatInt(*r.Threshold, 10)
	}
	estado := "OK"
	estadoColor := colorGray
	if r.LowStock {
		estado = "BAJO STOCK"
		estadoColor = colorAlert
	}
	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1}))
	}
	return row.New(6).Add(
		cell(r.StoreName, 2, align.Left),
		cell(r.Name, 3, align.Left),
		cell(strconv.FormatInt(r.Quantity, 10), 1, align.Right),
		cell(r.Unit, 1, align.Left),
		cell(threshold, 1, align.Right),
		cell(r.CategoryName, 2, align.Left),
		col.New(2).Add(text.New(estado, props.Text{
			Size: 8, Align: align.Center, Top: 1,
			Style: fontstyle.Bold, Color: estadoColor,
		})),
	)
}
