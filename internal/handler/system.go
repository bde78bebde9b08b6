package handler

import (
	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/davranaff/coffee/internal/lib/metrics"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/validation"
	"github.com/labstack/echo/v4"
)

type SystemHandler struct {
	Handler
}

func NewSystemHandler(s *server.Server) *SystemHandler {
	return &SystemHandler{Handler: NewHandler(s)}
}

type WelcomeResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
}

func (h *SystemHandler) Root(c echo.Context, _ *model.EmptyRequest) (*WelcomeResponse, error) {
	return &WelcomeResponse{Message: "Welcome to Coffee Shop!", Docs: "/docs"}, nil
}

// Latency returns per-route latency percentiles recorded since start.
func (h *SystemHandler) Latency(c echo.Context, _ *model.EmptyRequest) ([]metrics.RouteLatency, error) {
	return h.server.Latency.Snapshot(), nil
}

type EmailPreviewRequest struct {
	Template string `param:"template" validate:"required,oneof=verification order_confirmation order_status"`
}

func (r *EmailPreviewRequest) Validate() error {
	return validation.Validator().Struct(r)
}

// EmailPreview renders a transactional email with sample data.
func (h *SystemHandler) EmailPreview(c echo.Context, req *EmailPreviewRequest) (string, error) {
	name := email.Template(req.Template)
	return email.Render(name, email.PreviewData[name])
}
