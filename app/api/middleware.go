package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nazmulhossain17/niyenin-sub000/internal/logger"
	"github.com/nazmulhossain17/niyenin-sub000/internal/security"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"

	ContextUserIDKey  = "userID"
	ContextRoleKey    = "role"
	ContextPayloadKey = "tokenPayload"
)

// AuthMiddleware verifies the bearer token and stores the caller's id and role.
func AuthMiddleware(verifier security.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || !strings.EqualFold(fields[0], AuthorizationTypeBearer) {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := verifier.VerifyToken(fields[1])
		if err != nil || !payload.IsAccess() {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, payload.UserID)
		c.Set(ContextRoleKey, payload.Role)
		c.Set(ContextPayloadKey, payload)
		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextPayloadKey)
		if !exists {
			ForbiddenResponse(c, "Access Denied: Role not found in context")
			c.Abort()
			return
		}

		payload, ok := value.(*security.Payload)
		if !ok {
			ForbiddenResponse(c, "Access Denied: Invalid role data in context")
			c.Abort()
			return
		}

		if payload.HasRole(roles...) {
			c.Next()
			return
		}

		ForbiddenResponse(c, "Access Denied: You do not have the required role")
		c.Abort()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logger.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if c.Writer.Status() >= 500 {
			log.Warn("request failed", fields)
			return
		}
		log.Info("request", fields)
	}
}
