package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agritrace-backend/internal/authz"
	"agritrace-backend/internal/models"
	"agritrace-backend/internal/services"
	"agritrace-backend/utils"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
	ContextTokenKey  = "bearer_token"
)

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type AuthMiddleware struct {
	jwtService     *services.JWTService
	sessionService *services.SessionService
}

func NewAuthMiddleware(jwtService *services.JWTService, sessionService *services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:     jwtService,
		sessionService: sessionService,
	}
}

// RequireAuth verifies the bearer token signature and then checks the
// Redis session. A valid-but-signed-out token still gets 401, which is
// what tells clients to clear their stored session.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse("UNAUTHENTICATED", "Missing or malformed Authorization header"))
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.jwtService.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse("UNAUTHENTICATED", "Invalid or expired token"))
			return
		}

		active, err := m.sessionService.ValidateSession(c.Request.Context(), claims.UserID, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				utils.CreateErrorResponse("SESSION_CHECK_FAILED", "Failed to validate session"))
			return
		}
		if !active {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse("SESSION_EXPIRED", "Session has expired, please sign in again"))
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// CallerFromContext rebuilds the policy caller from the values the
// auth middleware stored.
func CallerFromContext(c *gin.Context) (authz.Caller, bool) {
	rawID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return authz.Caller{}, false
	}
	userID, err := uuid.Parse(rawID.(string))
	if err != nil {
		return authz.Caller{}, false
	}

	rawRole, ok := c.Get(ContextRoleKey)
	if !ok {
		return authz.Caller{}, false
	}
	role, ok := rawRole.(models.UserRole)
	if !ok {
		return authz.Caller{}, false
	}

	return authz.Caller{UserID: userID, Role: role}, true
}
