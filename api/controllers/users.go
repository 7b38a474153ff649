package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// UserGet resolves a seller profile; password hashes never leave the store.
func UserGet(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := svc.GetUserByID(chi.URLParam(r, "userId"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
			return
		}
		responses.WriteSuccess(w, user)
	}
}
