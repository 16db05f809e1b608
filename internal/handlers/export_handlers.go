package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mahin-dev/catalog-console/internal/listing"
	"github.com/tealeg/xlsx"
)

// ExportProducts serves GET /v1/products/export: the current filtered and
// sorted listing as a spreadsheet, all pages at once.
func (h *Handlers) ExportProducts(c *gin.Context) {
	q, err := queryFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := h.sessionProducts(c.Request.Context(), false)
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	// One page covering the whole result set.
	q.Page = 1
	q.PageSize = len(products)
	if q.PageSize < 1 {
		q.PageSize = 1
	}

	view, err := listing.ComputeView(products, q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build spreadsheet"})
		return
	}

	header := sheet.AddRow()
	for _, col := range []string{"Name", "SKU", "Category", "Regular Price", "Sale Price", "Stock", "Status"} {
		header.AddCell().Value = col
	}

	for _, p := range view.Rows {
		row := sheet.AddRow()
		row.AddCell().Value = p.Name
		row.AddCell().Value = p.SKU
		row.AddCell().Value = p.FirstCategory()
		row.AddCell().Value = p.RegularPrice.String()
		row.AddCell().Value = p.SalePrice.String()
		row.AddCell().SetInt(p.Stock)
		row.AddCell().Value = p.Status
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write spreadsheet"})
	}
}
