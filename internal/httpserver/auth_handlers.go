package httpserver

import (
	"encoding/json"
	"net/http"

	"parley/internal/domain"
	"parley/internal/service"
)

type registerRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	DisplayName *string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func handleRegister(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}

		resp, err := authSvc.Register(r.Context(), service.RegisterInput{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func handleLogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, domain.ErrInvalidArgument)
			return
		}

		resp, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
