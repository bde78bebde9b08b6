package service

import (
	"context"
	"time"

	"github.com/davranaff/coffee/internal/lib/utils"
	"github.com/davranaff/coffee/internal/model"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// UpdateMe applies the caller's profile changes. A new password is hashed
// before it is stored.
func (s *UserService) UpdateMe(ctx context.Context, user *model.User, req *model.UpdateMeRequest) (*model.User, error) {
	update := model.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}

	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	return s.users.Update(ctx, user.ID, update)
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, req *model.ListUsersRequest) ([]model.User, error) {
	return s.users.List(ctx, req.Offset(), req.Size())
}

// DeleteUnverifiedBefore purges accounts that never verified their email
// and were created before cutoff.
func (s *UserService) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.users.DeleteUnverifiedBefore(ctx, cutoff)
}
