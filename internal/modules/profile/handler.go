package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediavault/internal/domain"
	"mediavault/internal/pkg/response"
)

// Handler exposes the authenticated user's profile.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/profile", h.Get)
	g.PUT("/profile", h.Update)
}

func (h *Handler) Get(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, p, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profileResponse(user, p))
}

func (h *Handler) Update(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, p, err := h.service.Update(c.Request.Context(), userID, req)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profileResponse(user, p))
}

func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrInvalidBirthDate):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "PROFILE_OPERATION_FAILED", "Profile operation failed")
	}
}

func profileResponse(u *domain.User, p *domain.Profile) Response {
	resp := Response{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
	if p != nil {
		resp.Address = p.Address
		resp.Document = p.Document
		resp.DocumentType = p.DocumentType
		if !p.BirthDate.IsZero() {
			resp.BirthDate = p.BirthDate.Format(birthDateLayout)
		}
	}
	return resp
}
