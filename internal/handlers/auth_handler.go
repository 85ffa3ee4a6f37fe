package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agritrace-backend/internal/models"
	"agritrace-backend/internal/services"
	"agritrace-backend/utils"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, auth *AuthMiddleware) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", auth.RequireAuth(), h.Logout)
	rg.POST("/auth/logout-all", auth.RequireAuth(), h.LogoutAll)
	rg.GET("/auth/me", auth.RequireAuth(), h.Me)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	profile, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(profile))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(resp))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)
	token := c.GetString(ContextTokenKey)

	if err := h.userService.Logout(c.Request.Context(), userID, token); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"message": "Signed out"}))
}

// LogoutAll drops every session of the caller, signing them out on
// all devices.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)

	if err := h.userService.LogoutAll(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"message": "Signed out on all devices"}))
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString(ContextUserIDKey))
	if err != nil {
		writeError(c, models.ErrUnauthenticated)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(profile))
}
