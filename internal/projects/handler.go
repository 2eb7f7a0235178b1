package projects

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for project operations
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new projects handler
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers project routes. Mutating routes additionally go
// through the supplied admin gate.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	router.GET("/steps", h.listStepDefinitions)

	projects := router.Group("/projects")
	{
		projects.GET("", h.listProjects)
		projects.GET("/:id", h.getProject)
		projects.POST("", requireAdmin, h.createProject)
		projects.PUT("/:id/steps/:stepId", requireAdmin, h.updateStep)
		projects.DELETE("/:id/steps/:stepId/document", requireAdmin, h.deleteDocument)
	}
}

// listProjects handles GET /api/v1/projects
func (h *Handler) listProjects(c *gin.Context) {
	list := h.service.ListProjects(c.Request.Context())
	c.JSON(http.StatusOK, list)
}

// listStepDefinitions handles GET /api/v1/steps
func (h *Handler) listStepDefinitions(c *gin.Context) {
	c.JSON(http.StatusOK, StepDefinitions)
}

// getProject handles GET /api/v1/projects/:id
func (h *Handler) getProject(c *gin.Context) {
	project := h.service.GetProject(c.Request.Context(), c.Param("id"))
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// createProject handles POST /api/v1/projects
func (h *Handler) createProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	project := h.service.CreateProject(c.Request.Context(), req)
	c.JSON(http.StatusCreated, project)
}

// updateStep handles PUT /api/v1/projects/:id/steps/:stepId
func (h *Handler) updateStep(c *gin.Context) {
	stepID, err := strconv.Atoi(c.Param("stepId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step id"})
		return
	}

	var update StepUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := h.service.UpdateProjectStep(c.Request.Context(), c.Param("id"), stepID, update)
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project or step not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// deleteDocument handles DELETE /api/v1/projects/:id/steps/:stepId/document
func (h *Handler) deleteDocument(c *gin.Context) {
	stepID, err := strconv.Atoi(c.Param("stepId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step id"})
		return
	}

	project := h.service.DeleteDocument(c.Request.Context(), c.Param("id"), stepID)
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project or step not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}
