package floormap

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup/internal/domain/auth"
	"linkup/internal/pkg/response"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// Get handles GET /floormap.
func (h *Handler) Get(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	view, err := h.service.View(c.Request.Context(), p.UserID, p.Role.IsElevated())
	if err != nil {
		log.Printf("request_error type=floormap path=%s error=%v", c.FullPath(), err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"computers": view.Computers,
		"rooms":     view.Rooms,
		"map_img":   view.MapImage,
		"is_admin":  view.IsAdmin,
	})
}

// Live handles GET /floormap/ws.
func (h *Handler) Live(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	h.hub.ServeWS(c.Writer, c.Request, p.UserID)
}
