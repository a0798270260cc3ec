package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediavault/internal/domain"
	"mediavault/internal/pkg/response"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/recover-password", h.RecoverPassword)
		authGroup.POST("/verify-code", h.VerifyCode)
		authGroup.POST("/reset-password", h.ResetPassword)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrInvalidPhone):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": publicUser(user)})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to log in")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  publicUser(user),
		"token": token,
	})
}

func (h *Handler) RecoverPassword(c *gin.Context) {
	var req RecoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.RecoverPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "No account with this email")
			return
		}
		response.Error(c, http.StatusInternalServerError, "RECOVERY_FAILED", "Failed to start password recovery")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrCodeExpired):
			response.Error(c, http.StatusBadRequest, "CODE_EXPIRED", "Recovery code has expired")
		case errors.Is(err, ErrInvalidCode):
			response.Error(c, http.StatusBadRequest, "INVALID_CODE", "Invalid recovery code")
		default:
			response.Error(c, http.StatusInternalServerError, "VERIFY_FAILED", "Failed to verify code")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, ErrPasswordMismatch):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrCodeExpired):
			response.Error(c, http.StatusBadRequest, "CODE_EXPIRED", "Recovery code has expired")
		case errors.Is(err, ErrInvalidCode):
			response.Error(c, http.StatusBadRequest, "INVALID_CODE", "Invalid recovery code")
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "No account with this email")
		default:
			response.Error(c, http.StatusInternalServerError, "RESET_FAILED", "Failed to reset password")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

func publicUser(u *domain.User) UserPublic {
	return UserPublic{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
		Role:   string(u.Role),
		Status: string(u.Status),
	}
}
