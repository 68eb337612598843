package handler

import (
	"net/http"

	"canteen/internal/config"
	"canteen/internal/domain/model"
	"canteen/internal/middleware"
	"canteen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 学生向けの注文API
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type orderItemRequest struct {
	MenuItemID *int64 `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
}

type OrderCreateRequest struct {
	CanteenID   string             `json:"canteen_id"`
	Items       []orderItemRequest `json:"items"`
	TotalAmount int64              `json:"total_amount"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.RoleStudent))

	g.POST("", h.create)
	g.GET("/my", h.list)
	g.GET("/:orderId", h.detail)
}

func (h *OrderHandler) create(c echo.Context) error {
	usn, ok := getRefFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.LineItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.LineItemInput{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.Price,
			Quantity:   it.Quantity,
		})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), usn, usecase.CreateOrderInput{
		CanteenRef:  req.CanteenID,
		Items:       items,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	usn, ok := getRefFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), usn)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	usn, ok := getRefFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetMyOrder(c.Request().Context(), usn, c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
