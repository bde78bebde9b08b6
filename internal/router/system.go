package router

import (
	"net/http"

	"github.com/davranaff/coffee/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts everything outside /api/v1: welcome, health,
// latency stats, docs and the chat socket.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", handler.Handle(h.System.Root, http.StatusOK))

	r.GET("/status", h.Health.CheckHealth)
	r.GET("/status/latency", handler.Handle(h.System.Latency, http.StatusOK))

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.GET("/openapi.json", handler.Handle(h.OpenAPI.Document, http.StatusOK))

	r.GET("/ws/chat/:session_id", h.Socket.Chat)
}
