package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"canteen/internal/config"
	"canteen/internal/domain/model"
	"canteen/internal/middleware"
	"canteen/internal/repository"
	"canteen/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	uc  *usecase.AdminUsecase
	loc *time.Location
}

func NewAdminHandler(uc *usecase.AdminUsecase, loc *time.Location) *AdminHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{uc: uc, loc: loc}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.RoleGuard(model.RoleAdmin))

	admin.GET("/profile", h.profile)

	admin.GET("/canteens", h.listCanteens)
	admin.PUT("/canteens/:id/approve", h.approveCanteen)
	admin.PUT("/canteens/:id/reject", h.rejectCanteen)
	admin.PUT("/canteens/:id/toggle-status", h.toggleCanteen)

	admin.GET("/students", h.listStudents)
	admin.GET("/students/:id", h.studentDetail)

	admin.GET("/orders", h.listOrders)
	admin.PUT("/orders/:orderId/cancel", h.cancelOrder)

	admin.GET("/reports/revenue", h.revenue)
	admin.GET("/dashboard/stats", h.stats)
	admin.GET("/audit-logs", h.auditLogs)

	admin.GET("/export/canteens", h.exportCanteens)
	admin.GET("/export/students", h.exportStudents)
	admin.GET("/export/orders", h.exportOrders)
}

func (h *AdminHandler) profile(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Profile(c.Request().Context(), adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listCanteens(c echo.Context) error {
	out, err := h.uc.ListCanteens(c.Request().Context(), repository.CanteenListFilter{
		ApprovalStatus: c.QueryParam("approval_status"),
		Status:         c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type canteenActionFunc func(ctx echo.Context, adminID, canteenID int64) (usecase.CanteenDTO, error)

func (h *AdminHandler) canteenAction(c echo.Context, fn canteenActionFunc) error {
	canteenID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	// 操作した管理者ID（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := fn(c, adminID, canteenID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) approveCanteen(c echo.Context) error {
	return h.canteenAction(c, func(ctx echo.Context, adminID, canteenID int64) (usecase.CanteenDTO, error) {
		return h.uc.ApproveCanteen(ctx.Request().Context(), adminID, canteenID)
	})
}

func (h *AdminHandler) rejectCanteen(c echo.Context) error {
	return h.canteenAction(c, func(ctx echo.Context, adminID, canteenID int64) (usecase.CanteenDTO, error) {
		return h.uc.RejectCanteen(ctx.Request().Context(), adminID, canteenID)
	})
}

func (h *AdminHandler) toggleCanteen(c echo.Context) error {
	return h.canteenAction(c, func(ctx echo.Context, adminID, canteenID int64) (usecase.CanteenDTO, error) {
		return h.uc.ToggleCanteenStatus(ctx.Request().Context(), adminID, canteenID)
	})
}

func (h *AdminHandler) listStudents(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.uc.ListStudents(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) studentDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.StudentDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	from, ok := queryTime(c, "from", h.loc, false)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	to, ok := queryTime(c, "to", h.loc, true)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.uc.ListOrders(c.Request().Context(), repository.AdminOrderListFilter{
		Page:       page,
		Limit:      limit,
		Status:     c.QueryParam("status"),
		CanteenRef: strings.ToUpper(strings.TrimSpace(c.QueryParam("canteen_id"))),
		From:       from,
		To:         to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) cancelOrder(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.CancelOrder(c.Request().Context(), adminID, c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) revenue(c echo.Context) error {
	from, ok := queryTime(c, "from", h.loc, false)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	to, ok := queryTime(c, "to", h.loc, true)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.uc.RevenueReport(c.Request().Context(), repository.RevenueFilter{
		From:    from,
		To:      to,
		GroupBy: repository.RevenueGroupBy(c.QueryParam("group_by")),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) stats(c echo.Context) error {
	out, err := h.uc.DashboardStats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) auditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	f := repository.AuditLogFilter{
		ResourceKey: c.QueryParam("resource_key"),
		Limit:       limit,
		Offset:      offset,
	}
	if v := c.QueryParam("action"); v != "" {
		action := model.AuditAction(v)
		f.Action = &action
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if f.CreatedFrom, ok = queryTime(c, "from", h.loc, false); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	if f.CreatedTo, ok = queryTime(c, "to", h.loc, true); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) exportCanteens(c echo.Context) error {
	out, err := h.uc.ExportCanteens(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) exportStudents(c echo.Context) error {
	out, err := h.uc.ExportStudents(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) exportOrders(c echo.Context) error {
	from, ok := queryTime(c, "from", h.loc, false)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	to, ok := queryTime(c, "to", h.loc, true)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.uc.ExportOrders(c.Request().Context(), repository.ExportOrderFilter{From: from, To: to})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
