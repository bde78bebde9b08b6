package handler

import (
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

type InfoHandler struct {
	Handler
	info *service.InfoService
}

func NewInfoHandler(s *server.Server, info *service.InfoService) *InfoHandler {
	return &InfoHandler{Handler: NewHandler(s), info: info}
}

func (h *InfoHandler) ListLocations(c echo.Context, req *model.ListLocationsRequest) ([]model.CoffeeShopLocation, error) {
	return h.info.ListLocations(c.Request().Context(), req)
}

func (h *InfoHandler) GetLocation(c echo.Context, req *model.IDRequest) (*model.CoffeeShopLocation, error) {
	return h.info.GetLocation(c.Request().Context(), req.ID)
}

func (h *InfoHandler) CreateLocation(c echo.Context, req *model.CreateLocationRequest) (*model.CoffeeShopLocation, error) {
	return h.info.CreateLocation(c.Request().Context(), req)
}

func (h *InfoHandler) UpdateLocation(c echo.Context, req *model.UpdateLocationRequest) (*model.CoffeeShopLocation, error) {
	return h.info.UpdateLocation(c.Request().Context(), req)
}

// StaticMap answers with every static entry as a flat key/value object.
func (h *InfoHandler) StaticMap(c echo.Context, _ *model.EmptyRequest) (map[string]string, error) {
	return h.info.StaticMap(c.Request().Context())
}

func (h *InfoHandler) GetStatic(c echo.Context, req *model.StaticInfoKeyRequest) (*model.StaticInfo, error) {
	return h.info.GetStatic(c.Request().Context(), req.Key)
}

func (h *InfoHandler) CreateStatic(c echo.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	return h.info.CreateStatic(c.Request().Context(), req)
}

func (h *InfoHandler) UpdateStatic(c echo.Context, req *model.UpdateStaticInfoRequest) (*model.StaticInfo, error) {
	return h.info.UpdateStatic(c.Request().Context(), req)
}

func (h *InfoHandler) Company(c echo.Context, _ *model.EmptyRequest) (*model.CompanyInfo, error) {
	return h.info.Company(c.Request().Context())
}
