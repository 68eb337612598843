package handler

import (
	"net/http"

	"canteen/internal/config"
	"canteen/internal/domain/model"
	"canteen/internal/middleware"
	"canteen/internal/repository"
	"canteen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 店舗（厨房）側のAPI
type CanteenHandler struct {
	canteens *usecase.CanteenUsecase
	orders   *usecase.OrderUsecase
	verify   *usecase.VerifyUsecase
}

func NewCanteenHandler(canteens *usecase.CanteenUsecase, orders *usecase.OrderUsecase, verify *usecase.VerifyUsecase) *CanteenHandler {
	return &CanteenHandler{canteens: canteens, orders: orders, verify: verify}
}

type operatingHoursRequest struct {
	Enabled   *bool  `json:"enabled"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

type verifyRequest struct {
	Identifier string `json:"identifier"`
}

func (h *CanteenHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, canteenRepo repository.CanteenRepository) {
	// 公開
	e.GET("/api/canteens/active", h.listActive)

	g := e.Group("/api/canteen")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.RoleCanteen))
	g.Use(middleware.CanteenApprovedGuard(canteenRepo))

	g.GET("/profile", h.profile)
	g.PATCH("/toggle", h.toggle)
	g.GET("/operating-hours", h.getOperatingHours)
	g.PATCH("/operating-hours", h.updateOperatingHours)

	g.GET("/orders/today", h.todayOrders)
	g.GET("/orders", h.allOrders)
	g.PATCH("/orders/:orderId/ready", h.markReady)
	g.POST("/verify", h.verifyOrder)
}

func (h *CanteenHandler) listActive(c echo.Context) error {
	out, err := h.canteens.ListActive(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CanteenHandler) profile(c echo.Context) error {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.canteens.Profile(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CanteenHandler) toggle(c echo.Context) error {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.canteens.ToggleStatus(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CanteenHandler) getOperatingHours(c echo.Context) error {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.canteens.GetOperatingHours(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CanteenHandler) updateOperatingHours(c echo.Context) error {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req operatingHoursRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.canteens.UpdateOperatingHours(c.Request().Context(), id, usecase.UpdateOperatingHoursInput{
		Enabled:   req.Enabled,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CanteenHandler) todayOrders(c echo.Context) error {
	return h.listOrders(c, true)
}

func (h *CanteenHandler) allOrders(c echo.Context) error {
	return h.listOrders(c, false)
}

func (h *CanteenHandler) listOrders(c echo.Context, todayOnly bool) error {
	code, ok := getRefFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.orders.ListCanteenOrders(c.Request().Context(), code, todayOnly)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CanteenHandler) markReady(c echo.Context) error {
	code, ok := getRefFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.orders.MarkReady(c.Request().Context(), code, c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 受け取り時の照合。注文番号だけでもフルIDでもよい。
func (h *CanteenHandler) verifyOrder(c echo.Context) error {
	code, ok := getRefFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.verify.Verify(c.Request().Context(), code, req.Identifier)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
