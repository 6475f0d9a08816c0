package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"parley/internal/domain"
	"parley/internal/service"
)

func handleListNotifications(notifSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}

		unreadOnly := r.URL.Query().Get("unread") == "true"
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			var err error
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				writeError(w, domain.ErrInvalidArgument)
				return
			}
		}

		notifs, err := notifSvc.List(r.Context(), user.ID, unreadOnly, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if notifs == nil {
			notifs = []*domain.Notification{}
		}
		writeJSON(w, http.StatusOK, notifs)
	}
}

func handleMarkNotificationRead(notifSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
		if err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		if err := notifSvc.MarkRead(r.Context(), id, user.ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func handleMarkAllNotificationsRead(notifSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		if err := notifSvc.MarkAllRead(r.Context(), user.ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
