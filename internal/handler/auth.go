package handler

import (
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Handler: NewHandler(s), auth: auth}
}

func (h *AuthHandler) Register(c echo.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	return h.auth.Register(c.Request().Context(), req)
}

// Login accepts a JSON body or an OAuth2 password form.
func (h *AuthHandler) Login(c echo.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	return h.auth.Login(c.Request().Context(), req)
}

func (h *AuthHandler) Verify(c echo.Context, req *model.VerifyEmailRequest) (*model.MessageResponse, error) {
	return h.auth.Verify(c.Request().Context(), req)
}

func (h *AuthHandler) Refresh(c echo.Context, req *model.RefreshTokenRequest) (*model.TokenResponse, error) {
	return h.auth.Refresh(c.Request().Context(), req)
}
