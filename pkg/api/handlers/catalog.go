package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wolfhost/botpanel-backend/pkg/catalog"
)

type CatalogHandler struct {
	Source catalog.Source
}

func NewCatalogHandler(source catalog.Source) *CatalogHandler {
	return &CatalogHandler{Source: source}
}

// List godoc
// @Summary  List deployable bot templates
// @Tags     catalog
// @Produce  json
// @Success  200 {array} entities.CatalogEntry
// @Router   /catalog [get]
func (h *CatalogHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"catalog": h.Source.List()})
}

// Get godoc
// @Summary  Get one bot template with its configuration schema
// @Tags     catalog
// @Produce  json
// @Param    id path string true "catalog entry id"
// @Success  200 {object} entities.CatalogEntry
// @Router   /catalog/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	// Best-effort: serves the freshest schema the bot repo declares, falls
	// back to the static one.
	h.Source.RefreshSchema(c.Request.Context(), id)
	entry, err := h.Source.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
