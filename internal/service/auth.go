package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/davranaff/coffee/internal/lib/token"
	"github.com/davranaff/coffee/internal/lib/utils"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/sqlerr"
	"github.com/rs/zerolog"
)

const (
	msgBadCredentials = "Incorrect email or password"
	msgInactiveUser   = "Inactive user"
	msgInvalidRefresh = "Invalid refresh token"
	msgInvalidToken   = "Could not validate credentials"
)

type AuthService struct {
	users    UserStore
	tokens   *token.Manager
	notifier Notifier
	codeTTL  time.Duration
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, tokens *token.Manager, notifier Notifier, codeTTL time.Duration, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		codeTTL:  codeTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an unverified account and enqueues the verification email.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, badRequestWithCode("Email already registered", "USER_ALREADY_EXISTS")
	case !sqlerr.IsNotFound(err):
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.codeTTL)

	user, err := s.users.Create(ctx, &model.User{
		Email:                     email,
		PasswordHash:              hash,
		FirstName:                 req.FirstName,
		LastName:                  req.LastName,
		Phone:                     req.Phone,
		IsActive:                  true,
		VerificationCode:          &code,
		VerificationCodeExpiresAt: &expiresAt,
		Role:                      model.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.EnqueueVerificationEmail(ctx, user.Email, user.FirstName, code); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to enqueue verification email")
	}

	return &model.RegisterResponse{
		Message: "User successfully registered",
		Email:   user.Email,
	}, nil
}

// Login checks the credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, unauthorized(msgBadCredentials)
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, unauthorized(msgBadCredentials)
	}
	if !user.IsActive {
		return nil, unauthorized(msgInactiveUser)
	}

	return s.issue(user.ID)
}

// Verify confirms the email with the code sent at registration.
func (s *AuthService) Verify(ctx context.Context, req *model.VerifyEmailRequest) (*model.MessageResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, badRequest("User not found")
		}
		return nil, err
	}

	if user.VerificationCode == nil || *user.VerificationCode != req.VerificationCode {
		return nil, badRequest("Invalid verification code")
	}
	if user.VerificationCodeExpiresAt == nil || s.now().After(*user.VerificationCodeExpiresAt) {
		return nil, badRequest("Verification code expired")
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}

	return &model.MessageResponse{Message: "Email successfully verified"}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, req *model.RefreshTokenRequest) (*model.TokenResponse, error) {
	userID, err := s.tokens.Parse(req.RefreshToken, token.TypeRefresh)
	if err != nil {
		return nil, unauthorized(msgInvalidRefresh)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, unauthorized(msgInvalidRefresh)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, unauthorized(msgInactiveUser)
	}

	return s.issue(user.ID)
}

// Authenticate resolves an access token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := s.tokens.Parse(accessToken, token.TypeAccess)
	if err != nil {
		return nil, unauthorized(msgInvalidToken)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, unauthorized(msgInvalidToken)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, unauthorized(msgInactiveUser)
	}
	return user, nil
}

// EnsureAdmin creates the admin account, or promotes and resets the password
// of an existing account with that email.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, errors.New("admin email and password are required")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.users.Promote(ctx, existing.ID, model.RoleAdmin, hash)
	case !sqlerr.IsNotFound(err):
		return nil, err
	}

	return s.users.Create(ctx, &model.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		FirstName:    "Admin",
		IsActive:     true,
		IsVerified:   true,
		Role:         model.RoleAdmin,
	})
}

func (s *AuthService) issue(userID int64) (*model.TokenResponse, error) {
	access, refresh, err := s.tokens.IssuePair(userID)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    token.TokenType,
	}, nil
}
