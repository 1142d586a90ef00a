package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/service"
	"github.com/DeveloperForam/test-house-design/internal/storage"
)

// CatalogHandler serves the /api/services routes.
type CatalogHandler struct {
	catalog *service.CatalogService
	store   *storage.Store
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, store *storage.Store, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, store: store, logger: logger}
}

func (h *CatalogHandler) Register(api *gin.RouterGroup, auth gin.HandlerFunc) {
	services := api.Group("/services")
	services.GET("", h.List)
	services.POST("", auth, h.Create)
	services.PUT("/:id", auth, h.Update)
	services.DELETE("/:id", auth, h.Delete)
}

// List handles GET /api/services
func (h *CatalogHandler) List(c *gin.Context) {
	services, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load services")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": services})
}

// Create handles POST /api/services
func (h *CatalogHandler) Create(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	image, ok := h.saveImage(c)
	if !ok {
		return
	}

	svc, err := h.catalog.Create(c.Request.Context(), req, image)
	if err != nil {
		h.store.Delete(image)
		respondError(c, h.logger, err, "error", "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": svc})
}

// Update handles PUT /api/services/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	image, ok := h.saveImage(c)
	if !ok {
		return
	}

	svc, replaced, err := h.catalog.Update(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		h.store.Delete(image)
		respondError(c, h.logger, err, "error", "Failed to update service")
		return
	}
	h.store.Delete(replaced)
	c.JSON(http.StatusOK, gin.H{"data": svc})
}

// Delete handles DELETE /api/services/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	svc, err := h.catalog.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to delete service")
		return
	}
	h.store.Delete(svc.Image)
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}

// saveImage stores the optional "image" file and returns its public path.
func (h *CatalogHandler) saveImage(c *gin.Context) (string, bool) {
	file, err := c.FormFile("image")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return "", true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	paths, err := h.store.Save("services", []*multipart.FileHeader{file})
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to store image")
		return "", false
	}
	return paths[0], true
}
