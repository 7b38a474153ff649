package controllers

import (
	"net/http"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/api/validators"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

func AccountGet(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := svc.CurrentUser()
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AccountUpdate merges the provided username/email into the session user.
func AccountUpdate(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch marketplace.ProfilePatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateProfile(r.Context(), patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}
