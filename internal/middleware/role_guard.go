package middleware

import (
	"net/http"

	"canteen/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextに入っているroleが許可リストに含まれるか確認する。
func RoleGuard(allowed ...model.Role) echo.MiddlewareFunc {
	ok := make(map[model.Role]bool, len(allowed))
	for _, r := range allowed {
		ok[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !ok[model.Role(role)] {
				return c.JSON(http.StatusForbidden, errorJSON("access denied"))
			}
			return next(c)
		}
	}
}
