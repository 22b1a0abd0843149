package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianprocure/storefront-backend/api/middleware"
	"github.com/meridianprocure/storefront-backend/api/responses"
	"github.com/meridianprocure/storefront-backend/api/validators"
	"github.com/meridianprocure/storefront-backend/internal/cart"
	"github.com/meridianprocure/storefront-backend/internal/catalog"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
)

// SelectLocation activates a delivery location for the browsing session,
// clearing any existing cart and loading that location's catalog.
func SelectLocation(carts *cart.Store, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	type selectLocationRequest struct {
		Location string `json:"location" validate:"required"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.CartSessionID(ctx)

		var req selectLocationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		epoch, err := carts.SelectLocation(sessionID, req.Location)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		products, err := catalogSvc.FetchAvailable(ctx, req.Location)
		if err != nil {
			// The cart is already cleared; the client can retry the fetch by
			// selecting the location again.
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// A stale response for an older selection is discarded here.
		if !carts.InstallCatalog(sessionID, epoch, products) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "location changed during fetch"))
			return
		}

		responses.WriteSuccess(w, carts.Snapshot(sessionID))
	}
}

// GetCart returns the session's cart with computed totals.
func GetCart(carts *cart.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionID(r.Context())
		responses.WriteSuccess(w, carts.Snapshot(sessionID))
	}
}

// AddCartItem adds a product from the active catalog to the cart.
func AddCartItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	type addItemRequest struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.CartSessionID(ctx)

		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := carts.AddItem(sessionID, req.ProductID, req.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, carts.Snapshot(sessionID))
	}
}

// UpdateCartItem applies a raw quantity edit to an existing cart line.
func UpdateCartItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	type updateQuantityRequest struct {
		// Raw user input, deliberately a string: "" and "0" are legal
		// transient states while typing.
		Quantity string `json:"quantity"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.CartSessionID(ctx)
		productID := chi.URLParam(r, "productId")

		var req updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := carts.UpdateQuantity(sessionID, productID, req.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, carts.Snapshot(sessionID))
	}
}

// RemoveCartItem drops a line from the cart.
func RemoveCartItem(carts *cart.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionID(r.Context())
		carts.RemoveItem(sessionID, chi.URLParam(r, "productId"))
		responses.WriteSuccess(w, carts.Snapshot(sessionID))
	}
}
