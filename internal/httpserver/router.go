package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"parley/internal/config"
	"parley/internal/domain"
	"parley/internal/security"
	"parley/internal/service"
	"parley/internal/store/sqlite"
	"parley/internal/ws"
)

var validate = validator.New()

// NewRouter constructs the main HTTP router and wires routes, services, and
// middleware.
func NewRouter(cfg *config.Config, db *sql.DB, hub *ws.Hub, tokenSvc *security.TokenService, hasher *security.PasswordHasher, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	userRepo := sqlite.NewUserRepo(db)
	convRepo := sqlite.NewConversationRepo(db)
	partRepo := sqlite.NewParticipantRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)
	notifRepo := sqlite.NewNotificationRepo(db)

	// Services
	authSvc := service.NewAuthService(userRepo, tokenSvc, hasher)
	userSvc := service.NewUserService(userRepo)
	convSvc := service.NewConversationService(convRepo, partRepo)
	msgSvc := service.NewMessageService(convRepo, partRepo, msgRepo, hub, log)
	notifSvc := service.NewNotificationService(notifRepo)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/register", handleRegister(authSvc))
		r.Post("/login", handleLogin(authSvc))

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, userRepo))

			r.Get("/me", handleMe())
			r.Get("/users", handleListUsers(userSvc))

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", handleCreateConversation(convSvc))
				r.Get("/", handleListConversations(convSvc))
				r.Get("/{conversationID}", handleGetConversation(convSvc))
				r.Get("/{conversationID}/messages", handleListMessages(msgSvc))
				r.Post("/{conversationID}/messages", handleCreateMessage(msgSvc))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", handleListNotifications(notifSvc))
				r.Patch("/read-all", handleMarkAllNotificationsRead(notifSvc))
				r.Patch("/{notificationID}/read", handleMarkNotificationRead(notifSvc))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, partRepo, cfg.CORSOrigins, cfg.SendBuffer, log))

	return r
}

// requestLogger is a minimal zerolog access-log middleware.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(wrapped, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// writeJSON sends a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain sentinel errors onto HTTP status codes; anything
// unrecognized is an internal error with the detail kept out of the response.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid argument"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already exists"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
