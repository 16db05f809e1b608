package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mahin-dev/catalog-console/internal/models"
)

// ListReference serves GET /v1/reference/:kind, the read-only option lists
// the editor fetches once per session (categories, brands, colors, sizes,
// discounts, shipping rules, sections).
func (h *Handlers) ListReference(c *gin.Context) {
	kind, err := models.ParseReferenceKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	options, err := h.Gateway.ListReference(c.Request.Context(), kind)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	if options == nil {
		options = []models.ReferenceEntity{}
	}
	c.JSON(http.StatusOK, options)
}
