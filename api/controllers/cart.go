package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/api/validators"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

type cartResponse struct {
	Items []marketplace.CartItem `json:"items"`
	Total decimal.Decimal        `json:"total"`
	Count int                    `json:"count"`
}

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type addCartItemResponse struct {
	Added  bool         `json:"added"`
	Reason string       `json:"reason,omitempty"`
	Cart   cartResponse `json:"cart"`
}

func newCartResponse(svc marketplace.Service) cartResponse {
	items := svc.Cart()
	if items == nil {
		items = []marketplace.CartItem{}
	}
	return cartResponse{Items: items, Total: svc.CartTotal(), Count: len(items)}
}

func CartGet(svc marketplace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(svc))
	}
}

func CartClear(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// CartAddItem adds one unit of a product. A duplicate add is reported as
// added=false rather than an error.
func CartAddItem(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.AddToCart(r.Context(), req.ProductID)
		switch {
		case err == nil:
			responses.WriteSuccessStatus(w, http.StatusCreated, addCartItemResponse{Added: true, Cart: newCartResponse(svc)})
		case pkgerrors.IsInformational(err):
			responses.WriteSuccess(w, addCartItemResponse{
				Added:  false,
				Reason: string(pkgerrors.As(err).Code()),
				Cart:   newCartResponse(svc),
			})
		default:
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}

func CartRemoveItem(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveFromCart(r.Context(), chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(svc))
	}
}
