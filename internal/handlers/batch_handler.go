package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agritrace-backend/internal/authz"
	"agritrace-backend/internal/models"
	"agritrace-backend/internal/services"
	"agritrace-backend/utils"
)

type BatchHandler struct {
	batchService *services.BatchService
}

func NewBatchHandler(batchService *services.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup, auth *AuthMiddleware) {
	batches := rg.Group("/batches", auth.RequireAuth())
	batches.POST("", h.CreateBatch)
	batches.GET("", h.ListBatches)
	batches.GET("/:id", h.GetBatch)
	batches.POST("/:id/claim-transport", h.ClaimTransport)
	batches.POST("/:id/pickup", h.Pickup)
	batches.POST("/:id/start-transit", h.StartTransit)
	batches.POST("/:id/deliver", h.Deliver)
	batches.POST("/:id/claim-receipt", h.ClaimReceipt)
	batches.POST("/:id/confirm-receipt", h.ConfirmReceipt)
	batches.POST("/:id/photos", h.AttachPhoto)
}

func requireCallerAndBatchID(c *gin.Context) (authz.Caller, uuid.UUID, bool) {
	caller, ok := CallerFromContext(c)
	if !ok {
		writeError(c, models.ErrUnauthenticated)
		return authz.Caller{}, uuid.Nil, false
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("invalid batch id: %w", models.ErrInvalidInput))
		return authz.Caller{}, uuid.Nil, false
	}
	return caller, batchID, true
}

func (h *BatchHandler) CreateBatch(c *gin.Context) {
	caller, ok := CallerFromContext(c)
	if !ok {
		writeError(c, models.ErrUnauthenticated)
		return
	}

	var req models.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.batchService.CreateBatch(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(resp))
}

func (h *BatchHandler) ListBatches(c *gin.Context) {
	caller, ok := CallerFromContext(c)
	if !ok {
		writeError(c, models.ErrUnauthenticated)
		return
	}

	views, err := h.batchService.ListBatchViews(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(views))
}

func (h *BatchHandler) GetBatch(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	view, err := h.batchService.GetBatchView(c.Request.Context(), caller, batchID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(view))
}

func (h *BatchHandler) ClaimTransport(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	// Body is optional: a bare claim is valid.
	var req models.ClaimTransportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}

	transportLog, err := h.batchService.ClaimTransport(c.Request.Context(), caller, batchID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(transportLog))
}

func (h *BatchHandler) Pickup(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	var req models.PickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	snapshot, err := h.batchService.RecordPickup(c.Request.Context(), caller, batchID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"status":   models.BatchPickedUp,
		"snapshot": snapshot,
	}))
}

func (h *BatchHandler) StartTransit(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	var req struct {
		Location *models.GeoJSONPoint `json:"location"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}

	snapshot, err := h.batchService.StartTransit(c.Request.Context(), caller, batchID, req.Location)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"status":   models.BatchInTransit,
		"snapshot": snapshot,
	}))
}

func (h *BatchHandler) Deliver(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	var req models.DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	snapshot, err := h.batchService.RecordDelivery(c.Request.Context(), caller, batchID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"status":   models.BatchDelivered,
		"snapshot": snapshot,
	}))
}

func (h *BatchHandler) ClaimReceipt(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	receipt, err := h.batchService.ClaimReceipt(c.Request.Context(), caller, batchID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(receipt))
}

func (h *BatchHandler) ConfirmReceipt(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	var req models.ConfirmReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	receipt, err := h.batchService.ConfirmReceipt(c.Request.Context(), caller, batchID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(receipt))
}

func (h *BatchHandler) AttachPhoto(c *gin.Context) {
	caller, batchID, ok := requireCallerAndBatchID(c)
	if !ok {
		return
	}

	var req models.AttachPhotoRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		writeBindError(c, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	photo, err := h.batchService.AttachPhoto(
		c.Request.Context(), caller, batchID, req,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"),
		file, fileHeader.Size,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(photo))
}
