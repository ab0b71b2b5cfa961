package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
	"github.com/medready/paramedic-ops-api/pkg/response"
)

// ContextRoleKey stores the role resolved from the users table.
const ContextRoleKey = "resolvedRole"

// RoleResolver maps a session email to the authoritative stored role.
type RoleResolver interface {
	ResolveRole(ctx context.Context, email string) (models.UserRole, error)
}

// RequireMinRole enforces the ordered role hierarchy. The caller's role is
// resolved from the users table by the session email, not taken from the
// token claim.
func RequireMinRole(resolver RoleResolver, min models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		role, err := resolver.ResolveRole(c.Request.Context(), claims.Email)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if !role.AtLeast(min) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(ContextRoleKey, role)
		c.Next()
	}
}
