package handler

import (
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{Handler: NewHandler(s), users: users}
}

func (h *UserHandler) Me(c echo.Context, _ *model.EmptyRequest) (*model.User, error) {
	return middleware.GetUser(c), nil
}

func (h *UserHandler) UpdateMe(c echo.Context, req *model.UpdateMeRequest) (*model.User, error) {
	return h.users.UpdateMe(c.Request().Context(), middleware.GetUser(c), req)
}

func (h *UserHandler) Get(c echo.Context, req *model.GetUserRequest) (*model.User, error) {
	return h.users.Get(c.Request().Context(), req.UserID)
}

func (h *UserHandler) List(c echo.Context, req *model.ListUsersRequest) ([]model.User, error) {
	return h.users.List(c.Request().Context(), req)
}
