package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/davranaff/coffee/internal/chat"
	"github.com/davranaff/coffee/internal/errs"
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

// SocketHandler serves the live chat socket at /ws/chat/:session_id. The
// access token travels in the "token" query parameter since browsers cannot
// set headers on a websocket handshake.
type SocketHandler struct {
	Handler
	auth middleware.Authenticator
	chat *service.ChatService
	hub  *chat.Hub
}

func NewSocketHandler(s *server.Server, auth middleware.Authenticator, chatService *service.ChatService, hub *chat.Hub) *SocketHandler {
	return &SocketHandler{
		Handler: NewHandler(s),
		auth:    auth,
		chat:    chatService,
		hub:     hub,
	}
}

// Chat upgrades first and authorizes second, so every rejection reaches the
// client as a 1008 close frame instead of a plain HTTP error.
func (h *SocketHandler) Chat(c echo.Context) error {
	logger := middleware.GetLogger(c)

	conn, err := chat.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	ctx := c.Request().Context()

	user, session, reason := h.admit(ctx, c.Param("session_id"), c.QueryParam("token"))
	if reason != "" {
		logger.Info().Str("reason", reason).Msg("chat socket rejected")
		chat.ClosePolicyViolation(conn, reason)
		return nil
	}

	logger.Info().
		Int64("session_id", session.ID).
		Int64("user_id", user.ID).
		Msg("chat socket connected")

	client := chat.NewClient(session.ID, user.ID)
	h.hub.Register(client)
	go chat.WritePump(conn, client)

	h.chat.AnnouncePresence(ctx, user, session.ID, true)

	chat.ReadPump(conn, func(text string) {
		if _, err := h.chat.SendSocketMessage(ctx, user, session.ID, text); err != nil {
			logger.Warn().Err(err).Int64("session_id", session.ID).Msg("dropping chat frame")
		}
	})

	h.hub.Unregister(client)
	h.chat.AnnouncePresence(context.WithoutCancel(ctx), user, session.ID, false)

	logger.Info().Int64("session_id", session.ID).Msg("chat socket disconnected")
	return nil
}

// admit returns the close reason when the caller may not join the session.
func (h *SocketHandler) admit(ctx context.Context, rawSessionID, token string) (*model.User, *model.ChatSession, string) {
	sessionID, err := strconv.ParseInt(rawSessionID, 10, 64)
	if err != nil || sessionID <= 0 {
		return nil, nil, "Invalid session"
	}
	if token == "" {
		return nil, nil, "Not authenticated"
	}

	user, err := h.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, nil, "Could not validate credentials"
	}

	session, err := h.chat.Authorize(ctx, user, sessionID)
	if err != nil {
		return nil, nil, closeReason(err)
	}
	return user, session, ""
}

// closeReason keeps the user-facing message of HTTP errors. A close frame
// payload is capped at 125 bytes, two of which hold the code.
func closeReason(err error) string {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" && len(httpErr.Message) <= 123 {
		return httpErr.Message
	}
	return "Access denied"
}
