package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lakbay.com/lakbaypoints/internal/dto"
	"lakbay.com/lakbaypoints/internal/service"
	"lakbay.com/lakbaypoints/pkg/response"
	"lakbay.com/lakbaypoints/pkg/validator"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role.Name,
	})
}
