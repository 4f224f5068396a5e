package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
	"github.com/sasetin42/RidersBUD-sub003/pkg/response"
)

// RequireRoles admits callers holding one of the roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return SelfOr("", roles...)
}

// SelfOr admits callers holding one of the roles, or a caller with role self
// whose id equals the :id route parameter. An empty self disables the
// ownership check.
func SelfOr(self models.UserRole, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[user.Role]; ok {
			c.Next()
			return
		}

		if self != "" && user.Role == self {
			if target := c.Param("id"); target != "" && target == user.ID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
