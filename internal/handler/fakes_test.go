package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/davranaff/coffee/internal/config"
	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/davranaff/coffee/internal/lib/token"
	"github.com/davranaff/coffee/internal/lib/utils"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testPassword = "Roasted42"

func missing(table string) error {
	return fmt.Errorf("table:%s: %w", table, pgx.ErrNoRows)
}

// memStore backs the user and chat stores of the handler tests. Socket
// tests reach it from server goroutines, hence the lock.
type memStore struct {
	mu       sync.Mutex
	seq      int64
	users    map[int64]model.User
	sessions map[int64]model.ChatSession
	messages []model.ChatMessage
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]model.User),
		sessions: make(map[int64]model.ChatSession),
	}
}

func (m *memStore) next() int64 {
	m.seq++
	return m.seq
}

func (m *memStore) addUser(t *testing.T, emailAddr string, role model.Role, active bool) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	m.mu.Lock()
	defer m.mu.Unlock()
	u := model.User{
		Email:        emailAddr,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     active,
		IsVerified:   true,
		Role:         role,
	}
	u.ID = m.next()
	m.users[u.ID] = u
	return &u
}

func (m *memStore) addSession(userID int64) *model.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.ChatSession{UserID: userID, IsActive: true}
	s.ID = m.next()
	m.sessions[s.ID] = s
	return &s
}

// ---- users ----

type memUsers struct{ *memStore }

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, missing("users")
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, emailAddr string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, emailAddr) {
			return &u, nil
		}
	}
	return nil, missing("users")
}

func (r memUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	u.ID = r.next()
	r.users[u.ID] = u
	return &u, nil
}

func (r memUsers) Update(_ context.Context, id int64, update model.UserUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, missing("users")
	}
	return &u, nil
}

func (r memUsers) MarkVerified(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.IsVerified = true
	r.users[id] = u
	return nil
}

func (r memUsers) Promote(_ context.Context, id int64, role model.Role, passwordHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Role = role
	u.PasswordHash = passwordHash
	r.users[id] = u
	return &u, nil
}

func (r memUsers) List(_ context.Context, _, _ int) ([]model.User, error) {
	return nil, nil
}

func (r memUsers) DeleteUnverifiedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// ---- chat ----

type memChat struct{ *memStore }

func (r memChat) GetSession(_ context.Context, id int64) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, missing("chat_sessions")
	}
	return &s, nil
}

func (r memChat) GetActiveSessionByUser(_ context.Context, userID int64) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsActive {
			return &s, nil
		}
	}
	return nil, missing("chat_sessions")
}

func (r memChat) CreateSession(_ context.Context, userID int64) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := model.ChatSession{UserID: userID, IsActive: true}
	s.ID = r.next()
	r.sessions[s.ID] = s
	return &s, nil
}

func (r memChat) ListActiveSessions(_ context.Context) ([]model.ChatSession, error) {
	return nil, nil
}

func (r memChat) CloseSession(_ context.Context, id int64) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	s.IsActive = false
	r.sessions[id] = s
	return &s, nil
}

func (r memChat) TouchSession(_ context.Context, _ int64) error {
	return nil
}

func (r memChat) CreateMessage(_ context.Context, sessionID, senderID int64, content string) (*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := model.ChatMessage{SessionID: sessionID, SenderID: senderID, Content: content}
	m.ID = r.next()
	m.CreatedAt = time.Now().UTC()
	r.messages = append(r.messages, m)
	return &m, nil
}

func (r memChat) ListMessages(_ context.Context, _ int64, _, _ int) ([]model.ChatMessage, error) {
	return nil, nil
}

func (r memChat) LastMessages(_ context.Context, _ []int64, _ int) (map[int64][]model.ChatMessage, error) {
	return map[int64][]model.ChatMessage{}, nil
}

func (r memChat) CountUnread(_ context.Context, _, _ int64) (int, error) {
	return 0, nil
}

func (r memChat) MarkRead(_ context.Context, _, _ int64) (int64, error) {
	return 0, nil
}

type discardNotifier struct{}

func (discardNotifier) EnqueueVerificationEmail(context.Context, string, string, string) error {
	return nil
}

func (discardNotifier) EnqueueOrderConfirmationEmail(context.Context, string, email.OrderConfirmationData) error {
	return nil
}

func (discardNotifier) EnqueueOrderStatusEmail(context.Context, string, email.OrderStatusData) error {
	return nil
}

func newAuthService(store *memStore) (*service.AuthService, *token.Manager) {
	logger := zerolog.Nop()
	tokens := token.NewManager(config.AuthConfig{
		SecretKey:       "handler-test-secret-key",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	return service.NewAuthService(memUsers{store}, tokens, discardNotifier{}, time.Hour, &logger), tokens
}
