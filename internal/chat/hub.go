// Package chat fans chat events out to the WebSocket clients of a session.
//
// Every API instance keeps its own Hub of local clients. When Redis is
// reachable, events are published on chat:session:<id> and each instance's
// relay delivers them to its local clients, so a message posted on one
// instance reaches sockets held by another. Without Redis the hub delivers
// locally.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/davranaff/coffee/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	channelPrefix  = "chat:session:"
	channelPattern = channelPrefix + "*"

	// SendBuffer is the number of frames queued per client before it is
	// considered too slow and dropped.
	SendBuffer = 64
)

func channel(sessionID int64) string {
	return channelPrefix + strconv.FormatInt(sessionID, 10)
}

func sessionFromChannel(name string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(name, channelPrefix), 10, 64)
}

// Client is one socket connection. Several clients may belong to the same
// user, e.g. two browser tabs.
type Client struct {
	SessionID int64
	UserID    int64

	send      chan []byte
	closeOnce sync.Once
}

func NewClient(sessionID, userID int64) *Client {
	return &Client{
		SessionID: sessionID,
		UserID:    userID,
		send:      make(chan []byte, SendBuffer),
	}
}

// Send yields the frames to write to the socket. It is closed once the
// client is unregistered.
func (c *Client) Send() <-chan []byte {
	return c.send
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

type Hub struct {
	mu       sync.RWMutex
	sessions map[int64]map[*Client]struct{}

	redis    *redis.Client
	relaying atomic.Bool
	logger   *zerolog.Logger
}

// NewHub builds a hub. A nil redis client keeps delivery local.
func NewHub(redisClient *redis.Client, logger *zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[int64]map[*Client]struct{}),
		redis:    redisClient,
		logger:   logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[c.SessionID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.sessions[c.SessionID] = clients
	}
	clients[c] = struct{}{}
}

// Unregister removes the client and closes its send channel. It is safe to
// call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	h.remove(c)
	h.mu.Unlock()
}

// remove expects h.mu to be held for writing.
func (h *Hub) remove(c *Client) {
	if clients, ok := h.sessions[c.SessionID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.sessions, c.SessionID)
		}
	}
	c.close()
}

// ClientCount returns the number of local clients of a session.
func (h *Hub) ClientCount(sessionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Publish sends event to every client of its session, on this instance and,
// through Redis, on every other one.
func (h *Hub) Publish(ctx context.Context, event model.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode chat event: %w", err)
	}

	if h.redis != nil && h.relaying.Load() {
		err := h.redis.Publish(ctx, channel(event.SessionID), data).Err()
		if err == nil {
			return nil
		}
		h.logger.Warn().Err(err).Int64("session_id", event.SessionID).Msg("chat relay publish failed, delivering locally")
	}

	h.deliver(event.SessionID, data)
	return nil
}

// deliver queues data on every local client of the session. Clients whose
// buffer is full are dropped.
func (h *Hub) deliver(sessionID int64, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	h.mu.Lock()
	for _, c := range slow {
		h.logger.Warn().Int64("session_id", sessionID).Int64("user_id", c.UserID).Msg("dropping slow chat client")
		h.remove(c)
	}
	h.mu.Unlock()
}

// Run relays events published by any instance to the local clients until
// ctx is cancelled. Without Redis, or when the subscription fails, it
// returns and the hub keeps delivering locally.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}

	pubsub := h.redis.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("chat relay unavailable, delivering locally")
		return
	}

	h.relaying.Store(true)
	defer h.relaying.Store(false)
	h.logger.Info().Str("pattern", channelPattern).Msg("chat relay subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				h.logger.Warn().Msg("chat relay channel closed")
				return
			}

			sessionID, err := sessionFromChannel(msg.Channel)
			if err != nil {
				h.logger.Warn().Str("channel", msg.Channel).Msg("ignoring message on unexpected chat channel")
				continue
			}
			h.deliver(sessionID, []byte(msg.Payload))
		}
	}
}

// Close drops every local client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.sessions {
		for c := range clients {
			c.close()
		}
	}
	h.sessions = make(map[int64]map[*Client]struct{})
}
