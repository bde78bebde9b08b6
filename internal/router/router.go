// Package router builds the echo instance: global middleware, the system
// routes and the /api/v1 groups with their auth requirements.
package router

import (
	"github.com/davranaff/coffee/internal/handler"
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"

	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// securedPrefixes marks routes that expect a bearer token in the API docs.
var securedPrefixes = []string{
	"/api/v1/users",
	"/api/v1/cart",
	"/api/v1/orders",
	"/api/v1/chat",
	"/api/v1/emails",
}

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Pre(echoMiddleware.RemoveTrailingSlash())

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RecordLatency(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerAuthRoutes(v1, h, middlewares, s.Config.Server.AuthRateLimit)
	registerUserRoutes(v1, h, middlewares)
	registerProductRoutes(v1, h, middlewares)
	registerCartRoutes(v1, h, middlewares)
	registerOrderRoutes(v1, h, middlewares)
	registerChatRoutes(v1, h, middlewares)
	registerInfoRoutes(v1, h, middlewares)
	registerEmailRoutes(v1, h, middlewares)

	h.OpenAPI.SetRoutes(router.Routes(), securedPrefixes)

	return router
}
