package handler

import (
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/labstack/echo/v4"
)

type ChatHandler struct {
	Handler
	chat *service.ChatService
}

func NewChatHandler(s *server.Server, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{Handler: NewHandler(s), chat: chat}
}

func (h *ChatHandler) Session(c echo.Context, _ *model.EmptyRequest) (*model.ChatSession, error) {
	return h.chat.GetOrCreateSession(c.Request().Context(), middleware.GetUser(c))
}

func (h *ChatHandler) SendMessage(c echo.Context, req *model.SendMessageRequest) (*model.ChatMessage, error) {
	return h.chat.SendUserMessage(c.Request().Context(), middleware.GetUser(c), req.Content)
}

func (h *ChatHandler) ListMessages(c echo.Context, req *model.ListMessagesRequest) ([]model.ChatMessage, error) {
	return h.chat.ListMessages(c.Request().Context(), middleware.GetUser(c), req)
}

func (h *ChatHandler) UnreadCount(c echo.Context, req *model.SessionRequest) (*model.UnreadCountResponse, error) {
	return h.chat.UnreadCount(c.Request().Context(), middleware.GetUser(c), req.SessionID)
}

func (h *ChatHandler) MarkRead(c echo.Context, req *model.SessionRequest) (*model.MessageResponse, error) {
	return h.chat.MarkRead(c.Request().Context(), middleware.GetUser(c), req.SessionID)
}

func (h *ChatHandler) ActiveSessions(c echo.Context, _ *model.EmptyRequest) ([]model.ChatSession, error) {
	return h.chat.ActiveSessions(c.Request().Context())
}

func (h *ChatHandler) StaffMessage(c echo.Context, req *model.StaffMessageRequest) (*model.ChatMessage, error) {
	return h.chat.SendStaffMessage(c.Request().Context(), middleware.GetUser(c), req.SessionID, req.Content)
}

func (h *ChatHandler) CloseSession(c echo.Context, req *model.SessionRequest) (*model.MessageResponse, error) {
	return h.chat.CloseSession(c.Request().Context(), req.SessionID)
}
