package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"agritrace-backend/internal/models"
	"agritrace-backend/utils"
)

// writeError maps service-layer sentinels onto the HTTP error
// envelope. Unknown errors are logged and masked as 500.
func writeError(c *gin.Context, err error) {
	var upstream *models.UpstreamError
	if errors.As(err, &upstream) {
		code := "UPSTREAM_RATE_LIMITED"
		if upstream.StatusCode == http.StatusPaymentRequired {
			code = "UPSTREAM_BILLING"
		}
		c.JSON(upstream.StatusCode, utils.CreateErrorResponse(code, "AI provider rejected the request"))
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_INPUT", err.Error()))
	case errors.Is(err, models.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("UNAUTHENTICATED", err.Error()))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, utils.CreateErrorResponse("FORBIDDEN", err.Error()))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, utils.CreateErrorResponse("CONFLICT", err.Error()))
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, utils.CreateErrorResponse("INVALID_TRANSITION", err.Error()))
	default:
		slog.Error("Unhandled service error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("INTERNAL_ERROR", "Internal server error"))
	}
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_INPUT", err.Error()))
}
