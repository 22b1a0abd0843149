package controllers

import (
	"net/http"

	"github.com/meridianprocure/storefront-backend/api/middleware"
	"github.com/meridianprocure/storefront-backend/api/responses"
	"github.com/meridianprocure/storefront-backend/api/validators"
	"github.com/meridianprocure/storefront-backend/internal/checkout"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
)

// CreateCheckout builds the payment session from the cart and returns the
// processor redirect.
func CreateCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	type checkoutRequest struct {
		Email string `json:"email" validate:"omitempty,email"`
		GCLID string `json:"gclid"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.CartSessionID(ctx)

		var req checkoutRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		redirect, err := svc.Execute(ctx, sessionID, checkout.CustomerContext{
			Email: req.Email,
			GCLID: req.GCLID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, redirect)
	}
}

// GetCheckoutSession reads a checkout session back for the success page.
func GetCheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		data, err := svc.ReadSession(ctx, r.URL.Query().Get("session_id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Cache-Control", "no-cache")
		responses.WriteSuccess(w, data)
	}
}
