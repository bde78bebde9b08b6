package handler

import (
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	Handler
	orders *service.OrderService
}

func NewOrderHandler(s *server.Server, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{Handler: NewHandler(s), orders: orders}
}

func (h *OrderHandler) Place(c echo.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	return h.orders.Place(c.Request().Context(), middleware.GetUser(c), req)
}

func (h *OrderHandler) ListMine(c echo.Context, req *model.ListOrdersRequest) ([]model.Order, error) {
	return h.orders.ListMine(c.Request().Context(), middleware.GetUser(c).ID, req)
}

func (h *OrderHandler) Get(c echo.Context, req *model.IDRequest) (*model.Order, error) {
	return h.orders.Get(c.Request().Context(), middleware.GetUser(c).ID, req.ID)
}

func (h *OrderHandler) Cancel(c echo.Context, req *model.IDRequest) (*model.Order, error) {
	return h.orders.Cancel(c.Request().Context(), middleware.GetUser(c).ID, req.ID)
}

// UpdateStatus and ListAll are mounted behind the staff check.
func (h *OrderHandler) UpdateStatus(c echo.Context, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	return h.orders.UpdateStatus(c.Request().Context(), req)
}

func (h *OrderHandler) ListAll(c echo.Context, req *model.ListAllOrdersRequest) ([]model.Order, error) {
	return h.orders.ListAll(c.Request().Context(), req)
}
