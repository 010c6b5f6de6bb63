package middleware

import (
	"net/http"
	"strings"

	"wuauser/models"
	"wuauser/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

// JWTAuthMiddleware authenticates the bearer token and stores the caller in the context.
func JWTAuthMiddleware(secret []byte, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("auth")
	return func(c *gin.Context) {
		if len(secret) == 0 {
			logger.Warn("Rejecting request, JWT secret is not configured", zap.String("path", c.Request.URL.Path))
			utils.JSONError(c, http.StatusUnauthorized, "Authentication is not configured", "")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header", "")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		actor, err := utils.ActorFromToken(secret, tokenString)
		if err != nil {
			logger.Debug("Rejected token", zap.Error(err), zap.String("ip", getClientIP(c)))
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", "")
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole lets through only callers with one of the given roles. It must run after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "role "+string(actor.Role)+" may not call this endpoint")
	}
}

// ActorFrom returns the authenticated caller.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
