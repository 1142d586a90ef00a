package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/service"
	"github.com/DeveloperForam/test-house-design/internal/storage"
)

type ProjectHandler struct {
	projects *service.ProjectService
	houses   *service.HouseService
	store    *storage.Store
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, houses *service.HouseService, store *storage.Store, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, houses: houses, store: store, logger: logger}
}

// Register mounts the project routes both under /api/lily and directly under
// /api, where the console's project page calls them.
func (h *ProjectHandler) Register(api *gin.RouterGroup, auth gin.HandlerFunc) {
	for _, g := range []*gin.RouterGroup{api.Group("/lily"), api} {
		g.GET("/", h.ListProjects)
		g.POST("/", auth, h.CreateProject)
		g.PUT("/:id", auth, h.UpdateProject)
		g.DELETE("/:id", auth, h.DeleteProject)
	}
	api.GET("/lily/count", h.CountProjects)
	api.GET("/lily/houses/:projectId", auth, h.ListHouses)

	houses := api.Group("/houses", auth)
	houses.GET("/status-count", h.StatusCount)
	houses.GET("/:projectId", h.ListHouses)
	houses.GET("/:projectId/:houseNumber", h.GetHouse)
	houses.PATCH("/:projectId/:houseNumber", h.SetHouseStatus)
}

// ListProjects handles GET /api/
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

// CreateProject handles POST /api/ with a JSON or multipart body.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	in, ok := h.bindProject(c)
	if !ok {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), in)
	if err != nil {
		h.store.Delete(append(in.Images, in.FloorPlans...)...)
		respondError(c, h.logger, err, "error", "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": p})
}

// UpdateProject handles PUT /api/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	in, ok := h.bindProject(c)
	if !ok {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.store.Delete(append(in.Images, in.FloorPlans...)...)
		respondError(c, h.logger, err, "error", "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

// DeleteProject handles DELETE /api/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	p, err := h.projects.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to delete project")
		return
	}
	h.store.Delete(append(p.Images, p.FloorPlans...)...)
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// CountProjects handles GET /api/lily/count
func (h *ProjectHandler) CountProjects(c *gin.Context) {
	n, err := h.projects.Count(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to count projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalProjects": n})
}

// ListHouses handles GET /api/houses/:projectId?page=&limit=
func (h *ProjectHandler) ListHouses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageSize)))

	result, err := h.houses.List(c.Request.Context(), c.Param("projectId"), page, limit)
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load houses")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHouse handles GET /api/houses/:projectId/:houseNumber
func (h *ProjectHandler) GetHouse(c *gin.Context) {
	house, err := h.houses.Get(c.Request.Context(), c.Param("projectId"), c.Param("houseNumber"))
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load house")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": house})
}

// StatusCount handles GET /api/houses/status-count
func (h *ProjectHandler) StatusCount(c *gin.Context) {
	counts, err := h.houses.StatusCounts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to count houses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts})
}

// SetHouseStatus handles PATCH /api/houses/:projectId/:houseNumber
func (h *ProjectHandler) SetHouseStatus(c *gin.Context) {
	var req models.HouseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.houses.SetStatus(c.Request.Context(), c.Param("projectId"), c.Param("houseNumber"), req.Status)
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to update house status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "House status updated", "status": req.Status})
}

// bindProject reads the form and saves any uploaded files. On failure the
// response has been written.
func (h *ProjectHandler) bindProject(c *gin.Context) (service.ProjectInput, bool) {
	var in service.ProjectInput
	if !strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		if err := c.ShouldBindJSON(&in.Request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return in, false
		}
		return in, true
	}

	if err := c.ShouldBindWith(&in.Request, binding.FormMultipart); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}

	if in.Images, err = h.store.Save("projects", form.File["images"]); err != nil {
		respondError(c, h.logger, err, "error", "Failed to store images")
		return in, false
	}
	if in.FloorPlans, err = h.store.Save("projects", form.File["floorPlans"]); err != nil {
		h.store.Delete(in.Images...)
		respondError(c, h.logger, err, "error", "Failed to store floor plans")
		return in, false
	}
	return in, true
}
