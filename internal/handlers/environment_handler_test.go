package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace-backend/internal/models"
)

func bindFetchRequest(t *testing.T, body string) (models.EnvironmentalFetchRequest, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/environment/fetch", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req models.EnvironmentalFetchRequest
	err := c.ShouldBindJSON(&req)
	return req, err
}

func TestEnvironmentalFetchBindsZeroCoordinates(t *testing.T) {
	batchID := uuid.New().String()

	// Equator / prime meridian is a real coordinate, not missing input.
	req, err := bindFetchRequest(t, `{"batch_id":"`+batchID+`","stage":"transit","lat":0,"lon":0}`)
	require.NoError(t, err)

	require.NotNil(t, req.Lat)
	require.NotNil(t, req.Lon)
	assert.Equal(t, 0.0, *req.Lat)
	assert.Equal(t, 0.0, *req.Lon)
}

func TestEnvironmentalFetchRejectsMissingCoordinates(t *testing.T) {
	batchID := uuid.New().String()

	_, err := bindFetchRequest(t, `{"batch_id":"`+batchID+`","stage":"transit"}`)
	assert.Error(t, err)
}

func TestEnvironmentalFetchRejectsOutOfRangeCoordinates(t *testing.T) {
	batchID := uuid.New().String()

	_, err := bindFetchRequest(t, `{"batch_id":"`+batchID+`","stage":"transit","lat":91,"lon":0}`)
	assert.Error(t, err)

	_, err = bindFetchRequest(t, `{"batch_id":"`+batchID+`","stage":"transit","lat":0,"lon":181}`)
	assert.Error(t, err)
}
