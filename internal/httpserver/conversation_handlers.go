package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"parley/internal/domain"
	"parley/internal/service"
)

type conversationCreateRequest struct {
	Name           *string `json:"name"`
	ParticipantIDs []int64 `json:"participant_ids" validate:"required,min=1,dive,gt=0"`
}

func handleCreateConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		var req conversationCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}

		view, err := convSvc.Create(r.Context(), user.ID, req.Name, req.ParticipantIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		summaries, err := convSvc.List(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func handleGetConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		id, err := conversationIDParam(r)
		if err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		view, err := convSvc.Get(r.Context(), id, user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func conversationIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
}
