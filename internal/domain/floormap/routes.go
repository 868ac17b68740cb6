package floormap

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	fm := protected.Group("/floormap")
	{
		fm.GET("", h.Get)
		fm.GET("/ws", h.Live)
	}
}
