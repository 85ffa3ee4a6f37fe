package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agritrace-backend/internal/models"
	"agritrace-backend/internal/services"
	"agritrace-backend/utils"
)

type RouteHandler struct {
	routeService *services.RouteService
}

func NewRouteHandler(routeService *services.RouteService) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

func (h *RouteHandler) RegisterRoutes(rg *gin.RouterGroup, auth *AuthMiddleware) {
	rg.POST("/routes/calculate", auth.RequireAuth(), h.Calculate)
}

func (h *RouteHandler) Calculate(c *gin.Context) {
	var req models.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	route, err := h.routeService.Calculate(req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(route))
}
