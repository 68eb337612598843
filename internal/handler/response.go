package handler

import (
	"net/http"
	"strconv"
	"time"

	"canteen/internal/middleware"
	"canteen/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	return id, ok && id > 0
}

// USN or 店舗コード
func getRefFromContext(c echo.Context) (string, bool) {
	ref, ok := c.Get(middleware.CtxUserRefKey).(string)
	return ref, ok && ref != ""
}

func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// RFC3339 か YYYY-MM-DD を受け付ける。
// 日付だけのtoはその日の終わりまで含める。
func queryTime(c echo.Context, name string, loc *time.Location, endOfDay bool) (*time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	if tm, err := time.Parse(time.RFC3339, v); err == nil {
		return &tm, true
	}
	tm, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		tm = tm.Add(24*time.Hour - time.Nanosecond)
	}
	return &tm, true
}
