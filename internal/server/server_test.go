package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"canteen/internal/config"
	"canteen/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ハンドラの中身まで届かないリクエストだけを見るので usecase は nil でよい
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{Port: "8080", JWTSecret: "secret", FEURL: "http://localhost:3000", Location: time.UTC}
	log, _ := test.NewNullLogger()

	s := New(cfg, log)
	RegisterRoutes(s.Echo, cfg, nil, Handlers{
		Auth:          handler.NewAuthHandler(nil),
		Orders:        handler.NewOrderHandler(nil),
		Canteen:       handler.NewCanteenHandler(nil, nil, nil),
		Menu:          handler.NewMenuHandler(nil),
		Notifications: handler.NewNotificationHandler(nil),
		Admin:         handler.NewAdminHandler(nil, time.UTC),
	})
	return s
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alive":true}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders/my"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/canteen/profile"},
		{http.MethodPost, "/api/canteen/verify"},
		{http.MethodGet, "/api/canteen/menu"},
		{http.MethodGet, "/api/admin/dashboard/stats"},
		{http.MethodPut, "/api/admin/canteens/1/approve"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestShutdownWithoutRun(t *testing.T) {
	s := newTestServer(t)
	assert.NoError(t, s.Shutdown(time.Second))
}
