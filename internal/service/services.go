package service

import (
	"github.com/davranaff/coffee/internal/chat"
	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/davranaff/coffee/internal/lib/job"
	"github.com/davranaff/coffee/internal/repository"
	"github.com/davranaff/coffee/internal/server"
)

type Services struct {
	Auth     *AuthService
	Users    *UserService
	Products *ProductService
	Cart     *CartService
	Orders   *OrderService
	Chat     *ChatService
	Info     *InfoService
	Hub      *chat.Hub
	Job      *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	hub := chat.NewHub(s.Redis, s.Logger)

	return &Services{
		Auth:     NewAuthService(repos.Users, s.Tokens, s.Job, s.Config.Auth.VerificationCodeTTL, s.Logger),
		Users:    NewUserService(repos.Users),
		Products: NewProductService(repos.Products),
		Cart:     NewCartService(repos.Carts, repos.Products),
		Orders:   NewOrderService(s.DB, repos.Orders, repos.Carts, repos.Products, repos.Users, s.Job, s.Logger),
		Chat:     NewChatService(repos.Chat, hub, s.Logger),
		Info:     NewInfoService(repos.Info),
		Hub:      hub,
		Job:      s.Job,
	}, nil
}

// JobDependencies wires the background task handlers to the services.
func (s *Services) JobDependencies(sender email.Sender) job.Dependencies {
	return job.Dependencies{
		Email:  sender,
		Users:  s.Users,
		Orders: s.Orders,
	}
}
