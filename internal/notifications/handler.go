package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the recent status notifications to the presentation layer.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers notification routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notifications", h.listRecent)
}

// listRecent handles GET /api/v1/notifications
func (h *Handler) listRecent(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Recent())
}
