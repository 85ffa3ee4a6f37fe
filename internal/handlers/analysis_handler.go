package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agritrace-backend/internal/services"
	"agritrace-backend/utils"
)

type AnalysisHandler struct {
	analysisService *services.AnalysisService
}

func NewAnalysisHandler(analysisService *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (h *AnalysisHandler) RegisterRoutes(rg *gin.RouterGroup, auth *AuthMiddleware) {
	rg.POST("/batches/:id/analysis", auth.RequireAuth(), h.Analyze)
	rg.GET("/batches/:id/analysis", auth.RequireAuth(), h.GetAnalysis)
}

// Analyze runs (or re-runs) the degradation analysis for a batch.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	analysis, err := h.analysisService.AnalyzeBatch(c.Request.Context(), caller, batchID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(analysis))
}

func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	analysis, err := h.analysisService.GetAnalysis(c.Request.Context(), caller, batchID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(analysis))
}
