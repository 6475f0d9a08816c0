package httpserver

import (
	"net/http"

	"parley/internal/domain"
	"parley/internal/service"
)

func handleListUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		users, err := userSvc.ListOthers(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}
