package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/sqlerr"
	"github.com/rs/zerolog"
)

// ActiveSessionPreview is how many of the newest messages each active
// session carries in the staff overview.
const ActiveSessionPreview = 10

// Broadcaster delivers chat events to the sockets of a session.
type Broadcaster interface {
	Publish(ctx context.Context, event model.ChatEvent) error
}

type ChatService struct {
	chat   ChatStore
	hub    Broadcaster
	logger *zerolog.Logger
	now    func() time.Time
}

func NewChatService(chat ChatStore, hub Broadcaster, logger *zerolog.Logger) *ChatService {
	return &ChatService{chat: chat, hub: hub, logger: logger, now: time.Now}
}

// GetOrCreateSession returns the caller's active session with its messages.
func (s *ChatService) GetOrCreateSession(ctx context.Context, user *model.User) (*model.ChatSession, error) {
	session, err := s.activeSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chat.ListMessages(ctx, session.ID, 0, model.MaxPageLimit)
	if err != nil {
		return nil, err
	}
	session.Messages = nonNilMessages(messages)
	return session, nil
}

// SendUserMessage posts into the caller's active session, opening one if needed.
func (s *ChatService) SendUserMessage(ctx context.Context, user *model.User, content string) (*model.ChatMessage, error) {
	session, err := s.activeSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, user, session.ID, content)
}

// SendStaffMessage posts a staff reply into an open session.
func (s *ChatService) SendStaffMessage(ctx context.Context, staff *model.User, sessionID int64, content string) (*model.ChatMessage, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, badRequestWithCode("Chat session is closed", "CHAT_SESSION_CLOSED")
	}
	return s.post(ctx, staff, session.ID, content)
}

// SendSocketMessage stores a frame received on a session socket: staff
// reply into the session, its owner writes into it while it is open.
func (s *ChatService) SendSocketMessage(ctx context.Context, user *model.User, sessionID int64, content string) (*model.ChatMessage, error) {
	if user.IsStaff() {
		return s.SendStaffMessage(ctx, user, sessionID, content)
	}

	session, err := s.Authorize(ctx, user, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, badRequestWithCode("Chat session is closed", "CHAT_SESSION_CLOSED")
	}
	return s.post(ctx, user, session.ID, content)
}

// Authorize loads a session the caller may read: their own, or any for staff.
func (s *ChatService) Authorize(ctx context.Context, user *model.User, sessionID int64) (*model.ChatSession, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != user.ID && !user.IsStaff() {
		return nil, forbidden("No access to the chat session")
	}
	return session, nil
}

func (s *ChatService) ListMessages(ctx context.Context, user *model.User, req *model.ListMessagesRequest) ([]model.ChatMessage, error) {
	if _, err := s.Authorize(ctx, user, req.SessionID); err != nil {
		return nil, err
	}

	messages, err := s.chat.ListMessages(ctx, req.SessionID, req.Offset(), req.Size())
	if err != nil {
		return nil, err
	}
	return nonNilMessages(messages), nil
}

func (s *ChatService) UnreadCount(ctx context.Context, user *model.User, sessionID int64) (*model.UnreadCountResponse, error) {
	if _, err := s.Authorize(ctx, user, sessionID); err != nil {
		return nil, err
	}

	count, err := s.chat.CountUnread(ctx, sessionID, user.ID)
	if err != nil {
		return nil, err
	}
	return &model.UnreadCountResponse{Count: count}, nil
}

func (s *ChatService) MarkRead(ctx context.Context, user *model.User, sessionID int64) (*model.MessageResponse, error) {
	if _, err := s.Authorize(ctx, user, sessionID); err != nil {
		return nil, err
	}

	if _, err := s.chat.MarkRead(ctx, sessionID, user.ID); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Messages marked as read"}, nil
}

// ActiveSessions lists open sessions, most recently used first, each with
// its newest messages.
func (s *ChatService) ActiveSessions(ctx context.Context) ([]model.ChatSession, error) {
	sessions, err := s.chat.ListActiveSessions(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
	}

	latest, err := s.chat.LastMessages(ctx, ids, ActiveSessionPreview)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].Messages = nonNilMessages(latest[sessions[i].ID])
	}
	return sessions, nil
}

func (s *ChatService) CloseSession(ctx context.Context, sessionID int64) (*model.MessageResponse, error) {
	if _, err := s.session(ctx, sessionID); err != nil {
		return nil, err
	}

	if _, err := s.chat.CloseSession(ctx, sessionID); err != nil {
		return nil, err
	}

	s.publish(ctx, model.ChatEvent{
		Type:      model.ChatEventStatus,
		SessionID: sessionID,
		Message:   "Chat session closed",
		Timestamp: s.now().UTC(),
	})
	return &model.MessageResponse{Message: "Chat session closed"}, nil
}

// AnnouncePresence broadcasts that user joined or left the session's socket.
func (s *ChatService) AnnouncePresence(ctx context.Context, user *model.User, sessionID int64, connected bool) {
	verb := "connected to"
	if !connected {
		verb = "disconnected from"
	}

	s.publish(ctx, model.ChatEvent{
		Type:      model.ChatEventStatus,
		SessionID: sessionID,
		Message:   fmt.Sprintf("User %s %s the chat", user.Email, verb),
		Sender:    user.Email,
		SenderID:  user.ID,
		Timestamp: s.now().UTC(),
	})
}

func (s *ChatService) post(ctx context.Context, sender *model.User, sessionID int64, content string) (*model.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, badRequest("Message content must not be empty")
	}
	if len([]rune(content)) > model.MaxChatMessageLength {
		return nil, badRequest(fmt.Sprintf("Message content must be at most %d characters", model.MaxChatMessageLength))
	}

	message, err := s.chat.CreateMessage(ctx, sessionID, sender.ID, content)
	if err != nil {
		return nil, err
	}

	if err := s.chat.TouchSession(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Int64("session_id", sessionID).Msg("failed to touch chat session")
	}

	s.publish(ctx, model.ChatEvent{
		Type:      model.ChatEventMessage,
		SessionID: sessionID,
		Message:   message.Content,
		Sender:    sender.Email,
		SenderID:  sender.ID,
		MessageID: message.ID,
		Timestamp: message.CreatedAt,
	})
	return message, nil
}

func (s *ChatService) publish(ctx context.Context, event model.ChatEvent) {
	if err := s.hub.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Int64("session_id", event.SessionID).Msg("failed to publish chat event")
	}
}

func (s *ChatService) activeSession(ctx context.Context, userID int64) (*model.ChatSession, error) {
	session, err := s.chat.GetActiveSessionByUser(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !sqlerr.IsNotFound(err) {
		return nil, err
	}
	return s.chat.CreateSession(ctx, userID)
}

func (s *ChatService) session(ctx context.Context, sessionID int64) (*model.ChatSession, error) {
	session, err := s.chat.GetSession(ctx, sessionID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, notFound("Chat session not found")
		}
		return nil, err
	}
	return session, nil
}

func nonNilMessages(messages []model.ChatMessage) []model.ChatMessage {
	if messages == nil {
		return []model.ChatMessage{}
	}
	return messages
}
