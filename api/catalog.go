package api

import (
	"net/http"

	"github.com/Domenick1991/spacevoyager/internal/catalog"
	"github.com/gin-gonic/gin"
)

type CatalogReader interface {
	Snapshot() catalog.Catalog
}

type CatalogHandler struct {
	catalog CatalogReader
}

func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/destinations", h.destinations)
	router.GET("/accommodations", h.accommodations)
	router.GET("/craft", h.craft)
	router.GET("/extras", h.extras)
}

// Empty catalogs are served as empty lists, never as errors.
func (h *CatalogHandler) destinations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"destinations": nonNil(h.catalog.Snapshot().Destinations)})
}

func (h *CatalogHandler) accommodations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accommodations": nonNil(h.catalog.Snapshot().Accommodations)})
}

func (h *CatalogHandler) craft(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"spacecraft": nonNil(h.catalog.Snapshot().Craft)})
}

func (h *CatalogHandler) extras(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"extras": nonNil(h.catalog.Snapshot().Extras)})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
