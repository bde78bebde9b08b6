package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/davranaff/coffee/internal/errs"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/labstack/echo/v4"
)

// UserKey stores the authenticated *model.User in the echo context.
const UserKey = "user"

// Authenticator resolves a bearer access token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

type AuthMiddleware struct {
	server *server.Server
	auth   Authenticator
}

func NewAuthMiddleware(s *server.Server, auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth accepts "Authorization: Bearer <access token>", loads the user
// and stores it with its id and role in the echo context. The request logger
// is re-derived so later log lines carry the user.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return errs.NewUnauthorizedError("Not authenticated", false)
		}

		user, err := auth.auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			GetLogger(c).Warn().
				Err(err).
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("could not authenticate request")
			return err
		}

		userID := strconv.FormatInt(user.ID, 10)
		c.Set(UserKey, user)
		c.Set(UserIDKey, userID)
		c.Set(UserRoleKey, string(user.Role))

		logger := GetLogger(c).With().
			Str("user_id", userID).
			Str("user_role", string(user.Role)).
			Logger()
		c.Set(LoggerKey, &logger)

		logger.Debug().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}

// RequireStaff lets staff and admins through. It must run after RequireAuth.
func (auth *AuthMiddleware) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return requireRole(next, (*model.User).IsStaff)
}

// RequireAdmin lets admins through. It must run after RequireAuth.
func (auth *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return requireRole(next, (*model.User).IsAdmin)
}

func requireRole(next echo.HandlerFunc, allowed func(*model.User) bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := GetUser(c)
		if user == nil {
			return errs.NewUnauthorizedError("Not authenticated", false)
		}
		if !allowed(user) {
			return errs.NewForbiddenError("Not enough permissions", false)
		}
		return next(c)
	}
}

// GetUser returns the user stored by RequireAuth, or nil.
func GetUser(c echo.Context) *model.User {
	user, _ := c.Get(UserKey).(*model.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
