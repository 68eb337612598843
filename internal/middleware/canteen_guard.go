package middleware

import (
	"errors"
	"net/http"

	"canteen/internal/repository"

	"github.com/labstack/echo/v4"
)

// 店舗アカウントがDB上でまだ存在し、承認済みか確認する。
// 承認取り消し・削除はトークンの期限を待たずに反映される。
func CanteenApprovedGuard(canteens repository.CanteenRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || id <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			ct, err := canteens.FindByID(c.Request().Context(), id)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorJSON("canteen not found"))
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}
			if !ct.IsApproved() {
				return c.JSON(http.StatusForbidden, errorJSON("canteen is not approved"))
			}

			// 店舗コードはDBの値を正とする
			c.Set(CtxUserRefKey, ct.Code)
			return next(c)
		}
	}
}
