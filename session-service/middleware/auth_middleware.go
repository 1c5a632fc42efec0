package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cubis-academy-backend/shared/sessions"
	utils "cubis-academy-backend/shared/utils/auth"
)

const sessionContextKey = "sessionContext"

// AuthMiddleware verifies the bearer token's identity claims and builds the
// typed SessionContext every handler works from. The raw token doubles as
// the opaque session token presented to the session subsystem.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "Invalid authorization format. Expected Bearer {token}"})
			c.Abort()
			return
		}

		tokenString := tokenParts[1]

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid user ID in token"})
			c.Abort()
			return
		}

		c.Set(sessionContextKey, sessions.SessionContext{
			UserID:    userID,
			Email:     claims.Email,
			Token:     tokenString,
			DeviceID:  c.GetHeader("X-Device-ID"),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})

		c.Next()
	}
}

// GetSessionContext returns the SessionContext set by AuthMiddleware.
func GetSessionContext(c *gin.Context) (sessions.SessionContext, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return sessions.SessionContext{}, false
	}
	sctx, ok := value.(sessions.SessionContext)
	return sctx, ok
}
