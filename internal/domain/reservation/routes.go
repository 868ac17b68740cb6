package reservation

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the reservation API. limit guards the mutating
// endpoints and may be nil.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, limit gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if limit == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{limit, handler}
	}

	reservations := protected.Group("/reservations")
	{
		reservations.GET("/slots", h.ListSlots)
		reservations.GET("/me", h.Mine)
		reservations.POST("", guarded(h.Create)...)
		reservations.POST("/cancel", guarded(h.Cancel)...)
	}
}

// RegisterAdminRoutes mounts maintenance endpoints on a staff-only group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/sweep", h.RunSweep)
}
