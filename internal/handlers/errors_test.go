package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace-backend/internal/models"
	"agritrace-backend/utils"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("bad stage: %w", models.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{fmt.Errorf("bad creds: %w", models.ErrUnauthenticated), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{fmt.Errorf("not yours: %w", models.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("no batch: %w", models.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("already claimed: %w", models.ErrConflict), http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("bad move: %w", models.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION"},
		{&models.UpstreamError{StatusCode: http.StatusTooManyRequests, Message: "quota"}, http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED"},
		{&models.UpstreamError{StatusCode: http.StatusPaymentRequired, Message: "billing"}, http.StatusPaymentRequired, "UPSTREAM_BILLING"},
		{fmt.Errorf("something broke"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)

		writeError(c, tt.err)

		assert.Equal(t, tt.wantStatus, recorder.Code, "error: %v", tt.err)

		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, tt.wantCode, resp.Error.Code)
	}
}
