package handler

import (
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
)

// Handlers groups every HTTP handler so the router takes a single value.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Chat     *ChatHandler
	Socket   *SocketHandler
	Info     *InfoHandler
	System   *SystemHandler
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(s, services.Auth),
		Users:    NewUserHandler(s, services.Users),
		Products: NewProductHandler(s, services.Products),
		Cart:     NewCartHandler(s, services.Cart),
		Orders:   NewOrderHandler(s, services.Orders),
		Chat:     NewChatHandler(s, services.Chat),
		Socket:   NewSocketHandler(s, services.Auth, services.Chat, services.Hub),
		Info:     NewInfoHandler(s, services.Info),
		System:   NewSystemHandler(s),
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
	}
}
