package router

import (
	"net/http"

	"github.com/davranaff/coffee/internal/handler"
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/labstack/echo/v4"
)

func registerAuthRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares, rateLimit float64) {
	auth := v1.Group("/auth", m.RateLimit.Limit(rateLimit))

	auth.POST("/register", handler.Handle(h.Auth.Register, http.StatusCreated))
	auth.POST("/login", handler.Handle(h.Auth.Login, http.StatusOK))
	auth.POST("/verify", handler.Handle(h.Auth.Verify, http.StatusOK))
	auth.POST("/refresh", handler.Handle(h.Auth.Refresh, http.StatusOK))
}

func registerUserRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	users := v1.Group("/users", m.Auth.RequireAuth)

	users.GET("/me", handler.Handle(h.Users.Me, http.StatusOK))
	users.PUT("/me", handler.Handle(h.Users.UpdateMe, http.StatusOK))

	users.GET("", handler.Handle(h.Users.List, http.StatusOK), m.Auth.RequireAdmin)
	users.GET("/:user_id", handler.Handle(h.Users.Get, http.StatusOK), m.Auth.RequireAdmin)
}

// Catalogue reads are public; writes need staff.
func registerProductRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	products := v1.Group("/products")
	staff := []echo.MiddlewareFunc{m.Auth.RequireAuth, m.Auth.RequireStaff}

	products.GET("/categories", handler.Handle(h.Products.ListCategories, http.StatusOK))
	products.GET("/categories/:id", handler.Handle(h.Products.GetCategory, http.StatusOK))
	products.POST("/categories", handler.Handle(h.Products.CreateCategory, http.StatusCreated), staff...)

	products.GET("", handler.Handle(h.Products.List, http.StatusOK))
	products.GET("/:id", handler.Handle(h.Products.Get, http.StatusOK))
	products.POST("", handler.Handle(h.Products.Create, http.StatusCreated), staff...)
	products.PUT("/:id", handler.Handle(h.Products.Update, http.StatusOK), staff...)
	products.DELETE("/:id", handler.Handle(h.Products.Delete, http.StatusOK), staff...)
}

func registerCartRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	cart := v1.Group("/cart", m.Auth.RequireAuth)

	cart.GET("", handler.Handle(h.Cart.Get, http.StatusOK))
	cart.DELETE("", handler.Handle(h.Cart.Clear, http.StatusOK))
	cart.POST("/items", handler.Handle(h.Cart.AddItem, http.StatusCreated))
	cart.PUT("/items/:item_id", handler.Handle(h.Cart.UpdateItem, http.StatusOK))
	cart.DELETE("/items/:item_id", handler.Handle(h.Cart.RemoveItem, http.StatusOK))
}

func registerOrderRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	orders := v1.Group("/orders", m.Auth.RequireAuth)

	orders.POST("", handler.Handle(h.Orders.Place, http.StatusCreated))
	orders.GET("", handler.Handle(h.Orders.ListMine, http.StatusOK))
	orders.GET("/admin/all", handler.Handle(h.Orders.ListAll, http.StatusOK), m.Auth.RequireStaff)
	orders.GET("/:id", handler.Handle(h.Orders.Get, http.StatusOK))
	orders.PUT("/:id/cancel", handler.Handle(h.Orders.Cancel, http.StatusOK))
	orders.PUT("/:id/status", handler.Handle(h.Orders.UpdateStatus, http.StatusOK), m.Auth.RequireStaff)
}

func registerChatRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	chat := v1.Group("/chat", m.Auth.RequireAuth)

	chat.GET("/session", handler.Handle(h.Chat.Session, http.StatusOK))
	chat.POST("/messages", handler.Handle(h.Chat.SendMessage, http.StatusOK))
	chat.GET("/messages/:session_id", handler.Handle(h.Chat.ListMessages, http.StatusOK))
	chat.GET("/messages/:session_id/unread", handler.Handle(h.Chat.UnreadCount, http.StatusOK))
	chat.POST("/messages/:session_id/read", handler.Handle(h.Chat.MarkRead, http.StatusOK))

	chat.GET("/sessions/active", handler.Handle(h.Chat.ActiveSessions, http.StatusOK), m.Auth.RequireStaff)
	chat.POST("/sessions/:session_id/close", handler.Handle(h.Chat.CloseSession, http.StatusOK), m.Auth.RequireStaff)
	chat.POST("/staff/messages/:session_id", handler.Handle(h.Chat.StaffMessage, http.StatusOK), m.Auth.RequireStaff)
}

func registerInfoRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	info := v1.Group("/info")
	staff := []echo.MiddlewareFunc{m.Auth.RequireAuth, m.Auth.RequireStaff}

	info.GET("/locations", handler.Handle(h.Info.ListLocations, http.StatusOK))
	info.GET("/locations/:id", handler.Handle(h.Info.GetLocation, http.StatusOK))
	info.POST("/locations", handler.Handle(h.Info.CreateLocation, http.StatusCreated), staff...)
	info.PUT("/locations/:id", handler.Handle(h.Info.UpdateLocation, http.StatusOK), staff...)

	info.GET("/static", handler.Handle(h.Info.StaticMap, http.StatusOK))
	info.GET("/static/:key", handler.Handle(h.Info.GetStatic, http.StatusOK))
	info.POST("/static", handler.Handle(h.Info.CreateStatic, http.StatusCreated), staff...)
	info.PUT("/static/:key", handler.Handle(h.Info.UpdateStatic, http.StatusOK), staff...)

	info.GET("/company", handler.Handle(h.Info.Company, http.StatusOK))
}

func registerEmailRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	emails := v1.Group("/emails", m.Auth.RequireAuth, m.Auth.RequireStaff)

	emails.GET("/preview/:template", handler.HandleHTML(h.System.EmailPreview, http.StatusOK))
}
