package documents

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for document uploads
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers document routes under the project tree.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	router.POST("/projects/:id/steps/:stepId/document", requireAdmin, h.uploadDocument)
}

// uploadDocument handles POST /api/v1/projects/:id/steps/:stepId/document.
// Returns the public URL; the caller follows up with a step update.
func (h *Handler) uploadDocument(c *gin.Context) {
	stepID, err := strconv.Atoi(c.Param("stepId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	url, err := h.service.UploadDocument(c.Request.Context(), file, fileHeader.Filename, c.Param("id"), stepID)
	if err != nil {
		// Upload failures are answered with no URL rather than a hard error.
		c.JSON(http.StatusOK, gin.H{"url": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "file_name": fileHeader.Filename})
}
