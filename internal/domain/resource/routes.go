package resource

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	resources := protected.Group("/resources")
	{
		resources.POST("/status", h.SetStatus)
		resources.POST("/position", h.Move)
	}
}
