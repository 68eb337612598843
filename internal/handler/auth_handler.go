package handler

import (
	"net/http"

	"canteen/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type studentRegisterRequest struct {
	USN      string `json:"usn"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// usn か email のどちらかで
type studentLoginRequest struct {
	USN      string `json:"usn"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type canteenRegisterRequest struct {
	CanteenID string `json:"canteen_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type canteenLoginRequest struct {
	CanteenID string `json:"canteen_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/student/register", h.registerStudent)
	g.POST("/student/login", h.loginStudent)
	g.POST("/canteen/register", h.registerCanteen)
	g.POST("/canteen/login", h.loginCanteen)

	e.POST("/api/admin/login", h.loginAdmin)
}

func (h *AuthHandler) registerStudent(c echo.Context) error {
	var req studentRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.RegisterStudent(c.Request().Context(), usecase.RegisterStudentInput{
		USN:      req.USN,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) loginStudent(c echo.Context) error {
	var req studentLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.LoginStudent(c.Request().Context(), usecase.LoginInput{
		Key:      req.USN,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) registerCanteen(c echo.Context) error {
	var req canteenRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.RegisterCanteen(c.Request().Context(), usecase.RegisterCanteenInput{
		CanteenID: req.CanteenID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) loginCanteen(c echo.Context) error {
	var req canteenLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.LoginCanteen(c.Request().Context(), usecase.LoginInput{
		Key:      req.CanteenID,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) loginAdmin(c echo.Context) error {
	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.LoginAdmin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
