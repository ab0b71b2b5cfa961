package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
	"github.com/medready/paramedic-ops-api/pkg/response"
)

// CronSecret authenticates the scheduled job runner via a shared bearer
// secret instead of a user session.
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "cron endpoint is not configured"))
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) != 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid cron secret"))
			c.Abort()
			return
		}

		c.Next()
	}
}
