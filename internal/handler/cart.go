package handler

import (
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

// CartHandler serves the caller's own cart; every route requires auth.
type CartHandler struct {
	Handler
	cart *service.CartService
}

func NewCartHandler(s *server.Server, cart *service.CartService) *CartHandler {
	return &CartHandler{Handler: NewHandler(s), cart: cart}
}

func (h *CartHandler) Get(c echo.Context, _ *model.EmptyRequest) (*model.Cart, error) {
	return h.cart.Get(c.Request().Context(), middleware.GetUser(c).ID)
}

func (h *CartHandler) AddItem(c echo.Context, req *model.AddCartItemRequest) (*model.CartItem, error) {
	return h.cart.AddItem(c.Request().Context(), middleware.GetUser(c).ID, req)
}

func (h *CartHandler) UpdateItem(c echo.Context, req *model.UpdateCartItemRequest) (*model.CartItem, error) {
	return h.cart.UpdateItem(c.Request().Context(), middleware.GetUser(c).ID, req)
}

func (h *CartHandler) RemoveItem(c echo.Context, req *model.CartItemRequest) (*model.MessageResponse, error) {
	return h.cart.RemoveItem(c.Request().Context(), middleware.GetUser(c).ID, req.ItemID)
}

func (h *CartHandler) Clear(c echo.Context, _ *model.EmptyRequest) (*model.MessageResponse, error) {
	return h.cart.Clear(c.Request().Context(), middleware.GetUser(c).ID)
}
