package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricemarkup/backend/internal/domain"
	"github.com/pricemarkup/backend/internal/infrastructure/tabular"
	"github.com/pricemarkup/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	imports *usecase.ImportService
	catalog *usecase.CatalogService
	pricing *usecase.PricingService
}

// NewHandler creates a new HTTP handler
func NewHandler(imports *usecase.ImportService, catalog *usecase.CatalogService, pricing *usecase.PricingService) *Handler {
	return &Handler{
		imports: imports,
		catalog: catalog,
		pricing: pricing,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricemarkup-backend",
		"version": "1.0.0",
	})
}

// ImportFile ingests a delimited price-list file. The file arrives either
// as the multipart field "file" or as the raw request body.
func (h *Handler) ImportFile(c *gin.Context) {
	reader := c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}

	grid, err := tabular.ReadGrid(reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse file: " + err.Error()})
		return
	}

	outcome, err := h.imports.ImportGrid(c.Request.Context(), grid, domain.SourceFile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

type importTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ImportText ingests a free-text block through the extraction collaborator.
func (h *Handler) ImportText(c *gin.Context) {
	var req importTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	outcome, err := h.imports.ImportText(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

type importImageRequest struct {
	Data     string `json:"data" binding:"required"` // base64-encoded image bytes
	MimeType string `json:"mimeType" binding:"required"`
}

// ImportImage ingests a photographed price sheet.
func (h *Handler) ImportImage(c *gin.Context) {
	var req importImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data and mimeType are required"})
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be base64-encoded"})
		return
	}

	outcome, err := h.imports.ImportImage(c.Request.Context(), imageData, req.MimeType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

type importURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportURL ingests a web page through the search-grounded extractor.
func (h *Handler) ImportURL(c *gin.Context) {
	var req importURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	outcome, err := h.imports.ImportURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetCatalog returns the priced, search-filtered projection of the catalog
// together with the visibility flags the caller should honor.
func (h *Handler) GetCatalog(c *gin.Context) {
	catalog, err := h.catalog.Catalog()
	if err != nil {
		respondError(c, err)
		return
	}

	settings, err := h.catalog.Settings()
	if err != nil {
		respondError(c, err)
		return
	}

	items := h.pricing.Project(catalog, settings, c.Query("search"))
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"count":      len(items),
		"visibility": settings.Visibility,
	})
}

// CreateProduct adds a manual placeholder product.
func (h *Handler) CreateProduct(c *gin.Context) {
	product, err := h.catalog.AddManual()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies a manual field edit.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var update usecase.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes one catalog entry.
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCatalog empties the current catalog.
func (h *Handler) ClearCatalog(c *gin.Context) {
	if err := h.catalog.Clear(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSettings returns the pricing settings.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.catalog.Settings()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings validates and persists the pricing settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var settings domain.PricingSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	if err := h.catalog.SaveSettings(&settings); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ListSaved returns the saved-list history.
func (h *Handler) ListSaved(c *gin.Context) {
	lists, err := h.catalog.SavedLists()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists, "count": len(lists)})
}

type saveListRequest struct {
	Name string `json:"name"`
}

// SaveList snapshots the current catalog into the history.
func (h *Handler) SaveList(c *gin.Context) {
	// An absent body is fine, the name gets a default below.
	var req saveListRequest
	_ = c.ShouldBindJSON(&req)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "List " + time.Now().Format("01/02/2006 15:04:05")
	}

	list, err := h.catalog.SaveList(name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// RestoreList replaces the current catalog with a snapshot.
func (h *Handler) RestoreList(c *gin.Context) {
	catalog, err := h.catalog.RestoreList(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": catalog, "count": len(catalog)})
}

// DeleteList removes one snapshot.
func (h *Handler) DeleteList(c *gin.Context) {
	if err := h.catalog.DeleteList(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearLists wipes the saved-list history.
func (h *Handler) ClearLists(c *gin.Context) {
	if err := h.catalog.ClearLists(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportText renders the priced view as a chat-friendly plain-text list.
func (h *Handler) ExportText(c *gin.Context) {
	catalog, err := h.catalog.Catalog()
	if err != nil {
		respondError(c, err)
		return
	}

	settings, err := h.catalog.Settings()
	if err != nil {
		respondError(c, err)
		return
	}

	items := h.pricing.Project(catalog, settings, c.Query("search"))
	text := usecase.BuildLegibleList(items, settings.Visibility, time.Now())
	c.String(http.StatusOK, text)
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrEmptySource),
		errors.Is(err, domain.ErrNoValidRecords):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrListNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrImportInProgress),
		errors.Is(err, domain.ErrImportDiscarded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrExtractionFailure),
		errors.Is(err, domain.ErrMalformedResponse):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
