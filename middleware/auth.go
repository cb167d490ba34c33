package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meetbridge/utils"
)

// OrgIDKey is the gin context key holding the authenticated organization ID.
const OrgIDKey = "organizationID"

// JWTAuthMiddleware authenticates the bearer token and stores the caller's
// organization ID in the request context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		orgID, err := utils.ExtractOrgFromToken(tokenString)
		if err != nil || orgID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		c.Set(OrgIDKey, orgID)
		c.Next()
	}
}

// OrgID retrieves the authenticated organization ID from the gin context.
func OrgID(c *gin.Context) string {
	if v, ok := c.Get(OrgIDKey); ok {
		if orgID, ok := v.(string); ok {
			return orgID
		}
	}
	return ""
}
