package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianprocure/storefront-backend/api/responses"
	"github.com/meridianprocure/storefront-backend/internal/catalog"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
)

// GetCatalog returns the products priced for one delivery location.
func GetCatalog(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		slug := chi.URLParam(r, "locationSlug")

		products, err := svc.FetchAvailable(ctx, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}
