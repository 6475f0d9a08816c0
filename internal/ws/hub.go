package ws

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"parley/internal/domain"
)

// Channel keys. A user channel is bound at connect time; conversation
// channels are joined and left on demand.
func UserChannel(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func ConversationChannel(conversationID int64) string {
	return "conv:" + strconv.FormatInt(conversationID, 10)
}

// Session is one live connection. Outbound events go through a buffered send
// channel drained by WritePump, so a broadcast never blocks on a slow socket.
type Session struct {
	ID     string
	UserID int64

	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewSession wraps an upgraded connection. conn may be nil in tests; only
// WritePump touches it.
func NewSession(userID int64, conn *websocket.Conn, buffer int) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, buffer),
	}
}

// WritePump drains the send channel onto the socket. It returns when the
// session is closed or a write fails.
func (s *Session) WritePump() {
	defer s.conn.Close()
	for b := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// Close makes the session stop accepting events and ends WritePump.
func (s *Session) Close() {
	s.once.Do(func() { close(s.send) })
}

// Event is the envelope for everything the server pushes to a session.
type Event struct {
	Type         string               `json:"type"`
	Message      *domain.Message      `json:"message,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// Hub is the channel subscription registry: a concurrency-safe mapping from
// channel key to the set of sessions receiving its events. All mutation goes
// through atomic add/remove under the mutex; concurrent joins, leaves, and
// broadcasts are expected.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
		log:      log.With().Str("component", "hub").Logger(),
	}
}

// Bind registers a session and subscribes it to its private user channel.
func (h *Hub) Bind(s *Session) {
	h.Join(s, UserChannel(s.UserID))
}

// Join adds the session to a channel. Authorization is the caller's job; the
// hub only tracks membership.
func (h *Hub) Join(s *Session, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Session]struct{})
	}
	h.channels[channel][s] = struct{}{}
	if h.sessions[s] == nil {
		h.sessions[s] = make(map[string]struct{})
	}
	h.sessions[s][channel] = struct{}{}
}

// Leave removes the session from a channel. Always succeeds, whether or not
// the session was subscribed.
func (h *Hub) Leave(s *Session, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s, channel)
}

// RemoveSession unsubscribes the session from every channel and closes it.
// Called on disconnect; no trace of the subscriptions survives.
func (h *Hub) RemoveSession(s *Session) {
	h.mu.Lock()
	for channel := range h.sessions[s] {
		h.leaveLocked(s, channel)
	}
	delete(h.sessions, s)
	h.mu.Unlock()
	s.Close()
}

func (h *Hub) leaveLocked(s *Session, channel string) {
	if subs, ok := h.channels[channel]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	if chans, ok := h.sessions[s]; ok {
		delete(chans, channel)
	}
}

// Subscribers reports how many sessions a channel currently has.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Broadcast sends the payload to every session on the channel. Sessions whose
// buffers are full are dropped rather than allowed to block the fan-out.
func (h *Hub) Broadcast(channel string, payload []byte) {
	var stale []*Session

	h.mu.RLock()
	for s := range h.channels[channel] {
		select {
		case s.send <- payload:
		default:
			stale = append(stale, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range stale {
		h.log.Warn().Str("session_id", s.ID).Int64("user_id", s.UserID).Msg("dropping slow session")
		h.RemoveSession(s)
	}
}

// PublishMessage delivers a committed message to its conversation channel.
func (h *Hub) PublishMessage(m *domain.Message) {
	b, err := json.Marshal(Event{Type: "message", Message: m})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal message event")
		return
	}
	h.Broadcast(ConversationChannel(m.ConversationID), b)
}

// PublishNotification delivers a committed notification to its recipient's
// private channel.
func (h *Hub) PublishNotification(n *domain.Notification) {
	b, err := json.Marshal(Event{Type: "notification", Notification: n})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal notification event")
		return
	}
	h.Broadcast(UserChannel(n.UserID), b)
}

