package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
	"github.com/jirapat-s/ticketline/internal/service"
	"github.com/jirapat-s/ticketline/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	if err := h.authService.Register(c.Request.Context(), &req); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, response.Error("USER_EXISTS", "User with this username already exists"))
			return
		}
		internalError(c, "register failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.RegisterResponse{Message: "Success"})
}

// Login handles user login
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, response.Error("INVALID_CREDENTIALS", "Invalid username or password"))
			return
		}
		internalError(c, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
