package server

import (
	"net/http"

	"canteen/internal/config"
	"canteen/internal/handler"
	"canteen/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Orders        *handler.OrderHandler
	Canteen       *handler.CanteenHandler
	Menu          *handler.MenuHandler
	Notifications *handler.NotificationHandler
	Admin         *handler.AdminHandler
}

type healthResponse struct {
	Alive bool `json:"alive"`
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, canteenRepo repository.CanteenRepository, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Alive: true})
	})

	h.Auth.RegisterRoutes(e)
	h.Orders.RegisterRoutes(e, cfg)
	h.Notifications.RegisterRoutes(e, cfg)
	h.Canteen.RegisterRoutes(e, cfg, canteenRepo)
	h.Menu.RegisterRoutes(e, cfg, canteenRepo)
	h.Admin.RegisterRoutes(e, cfg)
}
