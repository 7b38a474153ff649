package controllers

import (
	"net/http"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// Checkout converts the cart into a purchase. Stock shortfalls come back as
// INSUFFICIENT_STOCK with the offending lines in details.
func Checkout(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchase, err := svc.Checkout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

func PurchaseList(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchases, err := svc.Purchases(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if purchases == nil {
			purchases = []marketplace.Purchase{}
		}
		responses.WriteSuccess(w, purchases)
	}
}
