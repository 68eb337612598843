package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"canteen/internal/config"
	"canteen/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	readTimeout       = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
)

type Server struct {
	Echo *echo.Echo
	addr string
	log  logrus.FieldLogger
}

func New(cfg config.Config, log logrus.FieldLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FEURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.Server.ReadTimeout = readTimeout
	e.Server.ReadHeaderTimeout = readHeaderTimeout
	e.Server.WriteTimeout = writeTimeout

	return &Server{Echo: e, addr: cfg.Addr(), log: log}
}

// Run はShutdownされるまで戻らない。
func (s *Server) Run() error {
	s.log.WithField("addr", s.addr).Info("http server listening")
	if err := s.Echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Echo.Shutdown(ctx)
}
