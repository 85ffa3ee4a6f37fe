package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agritrace-backend/internal/models"
	"agritrace-backend/internal/services"
	"agritrace-backend/utils"
)

type EnvironmentHandler struct {
	batchService *services.BatchService
}

func NewEnvironmentHandler(batchService *services.BatchService) *EnvironmentHandler {
	return &EnvironmentHandler{batchService: batchService}
}

func (h *EnvironmentHandler) RegisterRoutes(rg *gin.RouterGroup, auth *AuthMiddleware) {
	rg.POST("/environment/fetch", auth.RequireAuth(), h.Fetch)
}

// Fetch captures an on-demand environmental reading for one batch
// stage. Provider failures still return a stored row, tagged with
// data_quality=fallback.
func (h *EnvironmentHandler) Fetch(c *gin.Context) {
	caller, ok := CallerFromContext(c)
	if !ok {
		writeError(c, models.ErrUnauthenticated)
		return
	}

	var req models.EnvironmentalFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	reading, err := h.batchService.CaptureEnvironment(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(reading))
}
