package repository

import (
	"github.com/davranaff/coffee/internal/server"
)

type Repositories struct {
	Users    *UserRepository
	Products *ProductRepository
	Carts    *CartRepository
	Orders   *OrderRepository
	Chat     *ChatRepository
	Info     *InfoRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(s),
		Products: NewProductRepository(s),
		Carts:    NewCartRepository(s),
		Orders:   NewOrderRepository(s),
		Chat:     NewChatRepository(s),
		Info:     NewInfoRepository(s),
	}
}
