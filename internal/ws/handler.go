package ws

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"parley/internal/domain"
	"parley/internal/security"
)

// controlFrame is what clients send over the socket: join or leave a
// conversation channel.
type controlFrame struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id"`
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

// extractToken accepts the token either as a query parameter (handshake auth)
// or as an Authorization bearer header.
func extractToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

// MakeHandler returns the HTTP handler for the /ws endpoint. The handshake
// requires a valid identity assertion or the connection is rejected before
// any further interaction. A connected session is bound to its user channel
// immediately, joins conversation channels only after a membership check
// (non-members are silently ignored), and is removed from every channel on
// disconnect.
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	participants domain.ParticipantRepository,
	allowedOrigins []string,
	sendBuffer int,
	log zerolog.Logger,
) http.HandlerFunc {
	log = log.With().Str("component", "ws").Logger()
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{CheckOrigin: checkOrigin}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractToken(r)
		if tokenStr == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID, err := tokens.Subject(claims)
		if err != nil {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		session := NewSession(userID, conn, sendBuffer)
		hub.Bind(session)
		go session.WritePump()
		defer hub.RemoveSession(session)

		log.Debug().Str("session_id", session.ID).Int64("user_id", userID).Msg("session connected")

		ctx := r.Context()
		for {
			var frame controlFrame
			if err := conn.ReadJSON(&frame); err != nil {
				break
			}
			switch frame.Type {
			case "join_conversation":
				if frame.ConversationID == 0 {
					continue
				}
				ok, err := participants.IsParticipant(ctx, frame.ConversationID, userID)
				if err != nil {
					log.Error().Err(err).Int64("conversation_id", frame.ConversationID).Msg("membership check failed")
					continue
				}
				// Non-members are ignored without an error, indistinguishable
				// from a conversation that does not exist.
				if ok {
					hub.Join(session, ConversationChannel(frame.ConversationID))
				}

			case "leave_conversation":
				hub.Leave(session, ConversationChannel(frame.ConversationID))

			default:
				log.Debug().Str("type", frame.Type).Int64("user_id", userID).Msg("unknown control frame")
			}
		}

		log.Debug().Str("session_id", session.ID).Int64("user_id", userID).Msg("session disconnected")
	}
}
