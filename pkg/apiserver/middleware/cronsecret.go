package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const cronSecretHeader = "x-cron-secret"

// CronSecret guards the dispatch entry point with a shared-secret header.
// The comparison is constant time and the secret value is never logged.
// A server configured without a secret rejects every caller.
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(cronSecretHeader)
		if secret == "" || presented == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
