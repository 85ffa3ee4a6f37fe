package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"agritrace-backend/internal/services"
)

func TestAuthRoutesRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	auth := NewAuthMiddleware(services.NewJWTService("test-secret"), services.NewSessionService(nil))
	NewAuthHandler(nil).RegisterRoutes(router.Group("/api/v1"), auth)

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	assert.True(t, registered["POST /api/v1/auth/register"])
	assert.True(t, registered["POST /api/v1/auth/login"])
	assert.True(t, registered["POST /api/v1/auth/logout"])
	assert.True(t, registered["POST /api/v1/auth/logout-all"])
	assert.True(t, registered["GET /api/v1/auth/me"])
}
