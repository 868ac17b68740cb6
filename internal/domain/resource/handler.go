package resource

import (
	"errors"
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

// SetStatus handles POST /resources/status.
func (h *Handler) SetStatus(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	kind, err := ParseKind(req.Type)
	if err != nil {
		WriteError(c, err)
		return
	}

	caller := Caller{UserID: p.UserID, Elevated: p.Role.IsElevated()}
	if err := h.service.SetStatus(c.Request.Context(), caller, kind, req.ID, Status(req.Status)); err != nil {
		WriteError(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil)
}

// Move handles POST /resources/position.
func (h *Handler) Move(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	kind, err := ParseKind(req.Type)
	if err != nil {
		WriteError(c, err)
		return
	}

	caller := Caller{UserID: p.UserID, Elevated: p.Role.IsElevated()}
	if err := h.service.Move(c.Request.Context(), caller, kind, req.ID, *req.X, *req.Y); err != nil {
		WriteError(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil)
}

// WriteError renders registry and override failures. Domain failures are
// all reported as 400.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusBadRequest, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusBadRequest, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		log.Printf("request_error type=resource path=%s error=%v", c.FullPath(), err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
