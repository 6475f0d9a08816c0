package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"parley/internal/domain"
	"parley/internal/service"
)

type messageCreateRequest struct {
	Body string `json:"body" validate:"required"`
}

func handleCreateMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		convID, err := conversationIDParam(r)
		if err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}

		msg, err := msgSvc.Submit(r.Context(), convID, user.ID, req.Body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

func handleListMessages(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		convID, err := conversationIDParam(r)
		if err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}

		var before *time.Time
		if raw := r.URL.Query().Get("before"); raw != "" {
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				writeError(w, domain.ErrInvalidArgument)
				return
			}
			before = &t
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				writeError(w, domain.ErrInvalidArgument)
				return
			}
		}

		msgs, err := msgSvc.ListPage(r.Context(), convID, user.ID, before, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if msgs == nil {
			msgs = []*domain.Message{}
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}
