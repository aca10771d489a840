package middleware

import (
	"github.com/labstack/echo/v4"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
)

// RequireRole admits only callers whose token carries one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.NewError(common.CodeUnauthorized, "user not authenticated")
			}
			for _, allowed := range roles {
				if models.Role(role) == allowed {
					return next(c)
				}
			}
			return common.NewError(common.CodeForbidden, "insufficient permissions")
		}
	}
}
