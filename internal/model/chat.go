package model

import (
	"time"

	"github.com/davranaff/coffee/internal/validation"
)

type ChatSession struct {
	Base
	UserID   int64         `json:"user_id" db:"user_id"`
	IsActive bool          `json:"is_active" db:"is_active"`
	Messages []ChatMessage `json:"messages" db:"-"`
}

type ChatMessage struct {
	Base
	SessionID int64  `json:"session_id" db:"session_id"`
	SenderID  int64  `json:"sender_id" db:"sender_id"`
	Content   string `json:"content" db:"content"`
	IsRead    bool   `json:"is_read" db:"is_read"`
}

// ChatEventType distinguishes presence notices from chat messages on the socket.
type ChatEventType string

const (
	ChatEventStatus  ChatEventType = "status"
	ChatEventMessage ChatEventType = "message"
)

// ChatEvent is the frame pushed to every socket of a session.
type ChatEvent struct {
	Type      ChatEventType `json:"type"`
	SessionID int64         `json:"session_id"`
	Message   string        `json:"message"`
	Sender    string        `json:"sender,omitempty"`
	SenderID  int64         `json:"sender_id,omitempty"`
	MessageID int64         `json:"message_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// MaxChatMessageLength bounds message content from both REST and the socket.
const MaxChatMessageLength = 4000

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

func (r *SendMessageRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type StaffMessageRequest struct {
	SessionID int64  `param:"session_id" json:"-" validate:"required,gt=0"`
	Content   string `json:"content" validate:"required,max=4000"`
}

func (r *StaffMessageRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type SessionRequest struct {
	SessionID int64 `param:"session_id" json:"-" validate:"required,gt=0"`
}

func (r *SessionRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type ListMessagesRequest struct {
	Pagination
	SessionID int64 `param:"session_id" json:"-" validate:"required,gt=0"`
}

func (r *ListMessagesRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
