package reservation

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup/internal/domain/auth"
	"linkup/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListSlots handles GET /reservations/slots?type=&id=.
func (h *Handler) ListSlots(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var q SlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	listing, err := h.service.ListSlots(c.Request.Context(), p.UserID, q.Type, q.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	loc := h.service.clock.Location()
	response.OK(c, http.StatusOK, gin.H{
		"slots":             toSlotResponses(listing.Slots, loc),
		"resource_name":     listing.Resource.DisplayName(),
		"resource_status":   listing.Status,
		"user_active":       listing.UserActive,
		"current_available": listing.CurrentAvailable,
		"now":               formatTime(listing.Now, loc),
	})
}

// Create handles POST /reservations.
func (h *Handler) Create(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	row, err := h.service.Create(c.Request.Context(), p.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"reservation": toReservationResponse(row, h.service.clock.Location()),
	})
}

// Cancel handles POST /reservations/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	cleared, err := h.service.CancelAllFor(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"cleared": cleared})
}

// Mine handles GET /reservations/me.
func (h *Handler) Mine(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	row, err := h.service.Current(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"reservation": toReservationResponse(row, h.service.clock.Location()),
	})
}

// RunSweep handles POST /admin/sweep.
func (h *Handler) RunSweep(c *gin.Context) {
	result, err := h.service.SweepNow(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"expired":   result.Expired,
		"reset":     result.Reset,
		"activated": result.Activated,
	})
}

func writeError(c *gin.Context, err error) {
	if code, ok := Code(err); ok {
		response.Error(c, http.StatusBadRequest, code, err.Error())
		return
	}
	log.Printf("request_error type=reservation path=%s error=%v", c.FullPath(), err)
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
