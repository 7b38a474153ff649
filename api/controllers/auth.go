package controllers

import (
	"net/http"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/api/validators"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// AuthSignup creates an account and opens a session for it.
func AuthSignup(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req marketplace.SignupInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Signup(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func AuthLogin(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req marketplace.LoginInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

func AuthLogout(svc marketplace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Logout(r.Context())
		responses.WriteNoContent(w)
	}
}
