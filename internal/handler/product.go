package handler

import (
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	Handler
	products *service.ProductService
}

func NewProductHandler(s *server.Server, products *service.ProductService) *ProductHandler {
	return &ProductHandler{Handler: NewHandler(s), products: products}
}

func (h *ProductHandler) ListCategories(c echo.Context, _ *model.EmptyRequest) ([]model.Category, error) {
	return h.products.ListCategories(c.Request().Context())
}

func (h *ProductHandler) GetCategory(c echo.Context, req *model.IDRequest) (*model.Category, error) {
	return h.products.GetCategory(c.Request().Context(), req.ID)
}

func (h *ProductHandler) CreateCategory(c echo.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	return h.products.CreateCategory(c.Request().Context(), req)
}

func (h *ProductHandler) List(c echo.Context, req *model.ListProductsRequest) ([]model.Product, error) {
	return h.products.List(c.Request().Context(), req)
}

func (h *ProductHandler) Get(c echo.Context, req *model.IDRequest) (*model.Product, error) {
	return h.products.Get(c.Request().Context(), req.ID)
}

func (h *ProductHandler) Create(c echo.Context, req *model.CreateProductRequest) (*model.Product, error) {
	return h.products.Create(c.Request().Context(), req)
}

func (h *ProductHandler) Update(c echo.Context, req *model.UpdateProductRequest) (*model.Product, error) {
	return h.products.Update(c.Request().Context(), req)
}

func (h *ProductHandler) Delete(c echo.Context, req *model.IDRequest) (*model.MessageResponse, error) {
	return h.products.Delete(c.Request().Context(), req.ID)
}
