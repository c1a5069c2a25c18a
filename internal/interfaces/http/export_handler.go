package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/importer"
	"github.com/jhoicas/Almacen-api/internal/application/query"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/export"
)

// ExportHandler genera los reportes descargables y recibe los imports masivos.
type ExportHandler struct {
	queries  *query.QueryUseCase
	importer *importer.ImporterUseCase
	xlsx     *export.XLSXExporter
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
}

// NewExportHandler construye el handler de export/import.
func NewExportHandler(queries *query.QueryUseCase, imp *importer.ImporterUseCase) *ExportHandler {
	return &ExportHandler{
		queries:  queries,
		importer: imp,
		xlsx:     export.NewXLSXExporter(),
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
	}
}

// ExportXLSX godoc
// @Summary      Exportar inventario como XLSX
// @Tags         export
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        store  query  string  false  "Filtrar por almacén"
// @Success      200  {file}  binary
// @Router       /api/export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *fiber.Ctx) error {
	rows, err := h.queries.ExportRows(c.Context(), c.Query("store"))
	if err != nil {
		return errorResponse(c, err)
	}
	data, err := h.xlsx.Export(rows)
	if err != nil {
		return errorResponse(c, err)
	}
	return sendDownload(c, data,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"inventario-"+time.Now().Format("20060102")+".xlsx")
}

// ExportCSV godoc
// @Summary      Exportar inventario como CSV
// @Tags         export
// @Security     Bearer
// @Produce      text/csv
// @Param        store  query  string  false  "Filtrar por almacén"
// @Success      200  {file}  binary
// @Router       /api/export/csv [get]
func (h *ExportHandler) ExportCSV(c *fiber.Ctx) error {
	rows, err := h.queries.ExportRows(c.Context(), c.Query("store"))
	if err != nil {
		return errorResponse(c, err)
	}
	data, err := h.csv.Export(rows)
	if err != nil {
		return errorResponse(c, err)
	}
	return sendDownload(c, data, "text/csv",
		"inventario-"+time.Now().Format("20060102")+".csv")
}

// ExportPDF godoc
// @Summary      Exportar inventario como PDF
// @Tags         export
// @Security     Bearer
// @Produce      application/pdf
// @Param        store  query  string  false  "Filtrar por almacén"
// @Success      200  {file}  binary
// @Router       /api/export/pdf [get]
func (h *ExportHandler) ExportPDF(c *fiber.Ctx) error {
	rows, err := h.queries.ExportRows(c.Context(), c.Query("store"))
	if err != nil {
		return errorResponse(c, err)
	}
	title := "Inventario"
	if store := c.Query("store"); store != "" {
		title = "Inventario — " + store
	}
	data, err := h.pdf.Export(rows, title)
	if err != nil {
		return errorResponse(c, err)
	}
	return sendDownload(c, data, "application/pdf",
		"inventario-"+time.Now().Format("20060102")+".pdf")
}

// ImportJSON godoc
// @Summary      Importar items desde un lote JSON
// @Tags         export
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        store  query  string            false  "Almacén destino (default: default)"
// @Param        body   body   []dto.ImportRow   true   "Filas a importar"
// @Success      200    {object}  dto.ImportResult
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/import [post]
func (h *ExportHandler) ImportJSON(c *fiber.Ctx) error {
	var rows []dto.ImportRow
	if err := c.BodyParser(&rows); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.importer.ImportRows(c.Context(), targetStore(c), rows, GetEmail(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// ImportXLSX godoc
// @Summary      Importar items desde un libro XLSX (multipart, campo "file")
// @Tags         export
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        store  query     string  false  "Almacén destino (default: default)"
// @Param        file   formData  file    true   "Libro XLSX"
// @Success      200    {object}  dto.ImportResult
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/import/xlsx [post]
func (h *ExportHandler) ImportXLSX(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "falta el archivo (campo file)"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo abrir el archivo"})
	}
	defer f.Close()

	result, err := h.importer.ImportXLSX(c.Context(), targetStore(c), f, GetEmail(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

func targetStore(c *fiber.Ctx) string {
	if store := c.Query("store"); store != "" {
		return store
	}
	return entity.DefaultStoreID
}

func sendDownload(c *fiber.Ctx, data []byte, contentType, filename string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
